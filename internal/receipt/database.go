package receipt

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	receiptBucketName  = "receipts"
	itemBucketName     = "items" // item ID -> receipt ID
	feedbackBucketName = "feedback"
)

// DB defines the interface for the inventory store
type DB interface {
	// SaveReceipt stores a processed receipt and indexes its items
	SaveReceipt(receipt *ProcessedReceipt) error

	// GetReceipt retrieves a receipt by ID
	GetReceipt(id string) (*ProcessedReceipt, error)

	// ListReceipts returns all receipts
	ListReceipts() ([]*ProcessedReceipt, error)

	// DeleteReceipt removes a receipt and its item index entries
	DeleteReceipt(id string) error

	// GetItem retrieves an item and the ID of the receipt it came from
	GetItem(itemID string) (*Item, string, error)

	// SaveFeedback appends an expiry observation
	SaveFeedback(feedback *Feedback) error

	// ListFeedback returns all expiry observations
	ListFeedback() ([]*Feedback, error)

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{receiptBucketName, itemBucketName, feedbackBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveReceipt writes the receipt and its item index in one transaction
func (b *BoltDB) SaveReceipt(receipt *ProcessedReceipt) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(receipt)
		if err != nil {
			return fmt.Errorf("marshaling receipt: %w", err)
		}
		if err := tx.Bucket([]byte(receiptBucketName)).Put([]byte(receipt.ID), data); err != nil {
			return err
		}

		items := tx.Bucket([]byte(itemBucketName))
		for _, item := range receipt.Items {
			if err := items.Put([]byte(item.ID), []byte(receipt.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetReceipt retrieves a receipt by ID
func (b *BoltDB) GetReceipt(id string) (*ProcessedReceipt, error) {
	var receipt *ProcessedReceipt
	err := b.db.View(func(tx *bbolt.Tx) error {
		var err error
		receipt, err = getReceipt(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func getReceipt(tx *bbolt.Tx, id string) (*ProcessedReceipt, error) {
	data := tx.Bucket([]byte(receiptBucketName)).Get([]byte(id))
	if data == nil {
		return nil, fmt.Errorf("receipt %s: %w", id, ErrNotFound)
	}
	var receipt ProcessedReceipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, fmt.Errorf("unmarshaling receipt: %w", err)
	}
	return &receipt, nil
}

// ListReceipts returns all receipts
func (b *BoltDB) ListReceipts() ([]*ProcessedReceipt, error) {
	receipts := make([]*ProcessedReceipt, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(receiptBucketName)).ForEach(func(k, v []byte) error {
			var receipt ProcessedReceipt
			if err := json.Unmarshal(v, &receipt); err != nil {
				return fmt.Errorf("unmarshaling receipt: %w", err)
			}
			receipts = append(receipts, &receipt)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

// DeleteReceipt removes a receipt from the database
func (b *BoltDB) DeleteReceipt(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		receipt, err := getReceipt(tx, id)
		if err != nil {
			return err
		}
		items := tx.Bucket([]byte(itemBucketName))
		for _, item := range receipt.Items {
			if err := items.Delete([]byte(item.ID)); err != nil {
				return err
			}
		}
		return tx.Bucket([]byte(receiptBucketName)).Delete([]byte(id))
	})
}

// GetItem looks the item up through the item index
func (b *BoltDB) GetItem(itemID string) (*Item, string, error) {
	var (
		item      *Item
		receiptID string
	)
	err := b.db.View(func(tx *bbolt.Tx) error {
		ref := tx.Bucket([]byte(itemBucketName)).Get([]byte(itemID))
		if ref == nil {
			return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		receiptID = string(ref)

		receipt, err := getReceipt(tx, receiptID)
		if err != nil {
			return err
		}
		for i := range receipt.Items {
			if receipt.Items[i].ID == itemID {
				item = &receipt.Items[i]
				return nil
			}
		}
		return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	})
	if err != nil {
		return nil, "", err
	}
	return item, receiptID, nil
}

// SaveFeedback appends an expiry observation
func (b *BoltDB) SaveFeedback(feedback *Feedback) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(feedback)
		if err != nil {
			return fmt.Errorf("marshaling feedback: %w", err)
		}
		return tx.Bucket([]byte(feedbackBucketName)).Put([]byte(feedback.ID), data)
	})
}

// ListFeedback returns all expiry observations
func (b *BoltDB) ListFeedback() ([]*Feedback, error) {
	feedback := make([]*Feedback, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(feedbackBucketName)).ForEach(func(k, v []byte) error {
			var f Feedback
			if err := json.Unmarshal(v, &f); err != nil {
				return fmt.Errorf("unmarshaling feedback: %w", err)
			}
			feedback = append(feedback, &f)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return feedback, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
