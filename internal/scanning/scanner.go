package scanning

import (
	"context"
	"errors"
)

// ErrNoText is returned when a provider answers without any transcription
var ErrNoText = errors.New("no text extracted")

// Scanner defines the interface for receipt text extraction
type Scanner interface {
	// ExtractText transcribes the text printed on a receipt image or PDF
	ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}
