package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/pantry-tracker/internal/expiry"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	newReceipt := func(id string, itemIDs ...string) *ProcessedReceipt {
		r := &ProcessedReceipt{
			ID:             id,
			StoreName:      "FreshMart",
			Date:           time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
			TotalAmount:    1970,
			RawText:        "FreshMart\nFresh Milk 1L 12.90",
			ProcessingDate: time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC),
		}
		for _, itemID := range itemIDs {
			r.Items = append(r.Items, Item{
				ID:                  itemID,
				Name:                "Fresh Milk",
				Category:            expiry.Dairy,
				Quantity:            1,
				Unit:                "l",
				Price:               1290,
				EstimatedExpiryDate: time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC),
				Confidence:          0.78,
			})
		}
		return r
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveReceipt", func() {
		var err error

		JustBeforeEach(func() {
			err = db.SaveReceipt(newReceipt("r1", "i1", "i2"))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should save the receipt to the database", func() {
			saved, getErr := db.GetReceipt("r1")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(saved.StoreName).To(Equal("FreshMart"))
			Expect(saved.TotalAmount).To(Equal(1970))
			Expect(saved.Items).To(HaveLen(2))
			Expect(saved.Items[0].Category).To(Equal(expiry.Dairy))
			Expect(saved.Items[0].EstimatedExpiryDate.Equal(time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC))).To(BeTrue())
		})

		It("should index the items", func() {
			item, receiptID, getErr := db.GetItem("i2")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(receiptID).To(Equal("r1"))
			Expect(item.ID).To(Equal("i2"))
			Expect(item.Unit).To(Equal("l"))
		})

		It("should survive a reopen", func() {
			Expect(db.Close()).To(Succeed())
			reopened, openErr := NewBoltDB(dbPath)
			Expect(openErr).NotTo(HaveOccurred())
			db = reopened

			_, getErr := db.GetReceipt("r1")
			Expect(getErr).NotTo(HaveOccurred())
		})
	})

	Describe("GetReceipt", func() {
		When("receipt does not exist", func() {
			It("returns a not found error", func() {
				_, err := db.GetReceipt("missing")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("ListReceipts", func() {
		When("receipts exist", func() {
			BeforeEach(func() {
				Expect(db.SaveReceipt(newReceipt("r1", "i1"))).To(Succeed())
				Expect(db.SaveReceipt(newReceipt("r2", "i2"))).To(Succeed())
			})

			It("should return all receipts", func() {
				receipts, err := db.ListReceipts()
				Expect(err).NotTo(HaveOccurred())
				Expect(receipts).To(HaveLen(2))
			})
		})

		When("no receipts exist", func() {
			It("should return an empty list", func() {
				receipts, err := db.ListReceipts()
				Expect(err).NotTo(HaveOccurred())
				Expect(receipts).NotTo(BeNil())
				Expect(receipts).To(BeEmpty())
			})
		})
	})

	Describe("DeleteReceipt", func() {
		BeforeEach(func() {
			Expect(db.SaveReceipt(newReceipt("r1", "i1"))).To(Succeed())
		})

		When("receipt exists", func() {
			It("should remove the receipt and its items", func() {
				Expect(db.DeleteReceipt("r1")).To(Succeed())

				_, err := db.GetReceipt("r1")
				Expect(err).To(MatchError(ErrNotFound))
				_, _, err = db.GetItem("i1")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})

		When("receipt does not exist", func() {
			It("returns a not found error", func() {
				Expect(db.DeleteReceipt("missing")).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("GetItem", func() {
		It("returns a not found error for unknown items", func() {
			_, _, err := db.GetItem("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("Feedback", func() {
		It("should start empty", func() {
			feedback, err := db.ListFeedback()
			Expect(err).NotTo(HaveOccurred())
			Expect(feedback).To(BeEmpty())
		})

		It("should store and list observations", func() {
			Expect(db.SaveFeedback(&Feedback{
				ID:               "f1",
				ItemID:           "i1",
				Category:         expiry.Dairy,
				ActualExpiryDate: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			})).To(Succeed())
			Expect(db.SaveFeedback(&Feedback{ID: "f2", ItemID: "i2"})).To(Succeed())

			feedback, err := db.ListFeedback()
			Expect(err).NotTo(HaveOccurred())
			Expect(feedback).To(HaveLen(2))
			Expect(feedback[0].ID).To(Equal("f1"))
			Expect(feedback[0].Category).To(Equal(expiry.Dairy))
		})
	})

	Describe("Close", func() {
		It("should not return an error", func() {
			Expect(db.Close()).To(Succeed())
			db = nil
		})
	})
})
