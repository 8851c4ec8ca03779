package receipt

import (
	"log/slog"
	"time"
)

// FeedbackLog implements Learner by appending observations to the
// inventory store. Nothing is retrained here.
type FeedbackLog struct {
	db          DB
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewFeedbackLog creates a FeedbackLog writing to db
func NewFeedbackLog(db DB, idGen IDGenerator, timeSrc TimeSource) *FeedbackLog {
	return &FeedbackLog{db: db, idGenerator: idGen, timeSource: timeSrc}
}

// Learn records the actual expiry of an item. Unknown items are still
// recorded; failures are logged, never returned.
func (f *FeedbackLog) Learn(itemID string, actualExpiry time.Time) {
	feedback := &Feedback{
		ID:               f.idGenerator.Generate(),
		ItemID:           itemID,
		ActualExpiryDate: actualExpiry,
		RecordedAt:       f.timeSource.Now(),
	}

	item, receiptID, err := f.db.GetItem(itemID)
	if err != nil {
		slog.Warn("Feedback for unknown item", "item_id", itemID, "error", err)
	} else {
		feedback.ReceiptID = receiptID
		feedback.Category = item.Category
		feedback.PredictedExpiryDate = item.EstimatedExpiryDate
	}

	if err := f.db.SaveFeedback(feedback); err != nil {
		slog.Error("Failed to record feedback", "item_id", itemID, "error", err)
		return
	}
	slog.Info("Recorded expiry feedback",
		"item_id", itemID,
		"category", feedback.Category,
		"predicted", feedback.PredictedExpiryDate.Format(time.DateOnly),
		"actual", actualExpiry.Format(time.DateOnly),
	)
}
