package receipt

import (
	"time"

	"github.com/zombor/pantry-tracker/internal/expiry"
)

// Item is one categorised, dated inventory candidate read from a receipt
type Item struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	OriginalName        string          `json:"original_name"`
	Quantity            float64         `json:"quantity"`
	Unit                string          `json:"unit"`
	Price               int             `json:"price"` // Price in cents
	Category            expiry.Category `json:"category"`
	EstimatedExpiryDate time.Time       `json:"estimated_expiry_date"`
	ShelfLifeDays       int             `json:"shelf_life_days"`
	Confidence          float64         `json:"confidence"`
	Barcode             string          `json:"barcode,omitempty"`
	Brand               string          `json:"brand,omitempty"`
}

// ProcessedReceipt is a parsed receipt with its items, as handed to the
// inventory store. It is never modified after creation.
type ProcessedReceipt struct {
	ID             string    `json:"id"`
	StoreName      string    `json:"store_name"`
	StoreAddress   string    `json:"store_address,omitempty"`
	Date           time.Time `json:"date"`
	TotalAmount    int       `json:"total_amount"` // Total in cents
	Items          []Item    `json:"items"`
	RawText        string    `json:"raw_text"`
	ProcessingDate time.Time `json:"processing_date"`
	Filename       string    `json:"filename,omitempty"`
	ContentType    string    `json:"content_type,omitempty"`
}

// Feedback records the real expiry date a user observed for an item
type Feedback struct {
	ID                  string          `json:"id"`
	ItemID              string          `json:"item_id"`
	ReceiptID           string          `json:"receipt_id,omitempty"`
	Category            expiry.Category `json:"category,omitempty"`
	PredictedExpiryDate time.Time       `json:"predicted_expiry_date"`
	ActualExpiryDate    time.Time       `json:"actual_expiry_date"`
	RecordedAt          time.Time       `json:"recorded_at"`
}
