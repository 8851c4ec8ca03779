package receipt

import "errors"

var (
	// ErrOCRFailure means no usable text came back from the scanner
	ErrOCRFailure = errors.New("ocr failure")
	// ErrEmptyReceipt means the text contained no recognisable line items
	ErrEmptyReceipt = errors.New("no items found on receipt")
	// ErrNotFound is returned for unknown receipt or item IDs
	ErrNotFound = errors.New("not found")
	// ErrNoImprover is returned when photo re-scoring is not configured
	ErrNoImprover = errors.New("photo re-scoring not configured")
)
