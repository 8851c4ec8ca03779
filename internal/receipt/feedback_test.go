package receipt

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/pantry-tracker/internal/expiry"
)

var _ = Describe("FeedbackLog", func() {
	var (
		db          *mockDB
		feedbackLog *FeedbackLog
		actual      time.Time
	)

	BeforeEach(func() {
		db = newMockDB()
		db.receipts["r1"] = &ProcessedReceipt{ID: "r1", Items: []Item{
			{ID: "i1", Category: expiry.Meat, EstimatedExpiryDate: day(2024, time.March, 13)},
		}}
		feedbackLog = NewFeedbackLog(db, &sequentialIDGenerator{}, &mockTimeSource{now: day(2024, time.March, 15)})
		actual = day(2024, time.March, 12)
	})

	It("records the prediction next to the observation", func() {
		feedbackLog.Learn("i1", actual)

		Expect(db.feedback).To(HaveLen(1))
		f := db.feedback[0]
		Expect(f.ID).To(Equal("id-1"))
		Expect(f.ReceiptID).To(Equal("r1"))
		Expect(f.Category).To(Equal(expiry.Meat))
		Expect(f.PredictedExpiryDate).To(Equal(day(2024, time.March, 13)))
		Expect(f.ActualExpiryDate).To(Equal(actual))
		Expect(f.RecordedAt).To(Equal(day(2024, time.March, 15)))
	})

	It("still records feedback for unknown items", func() {
		feedbackLog.Learn("ghost", actual)

		Expect(db.feedback).To(HaveLen(1))
		Expect(db.feedback[0].ItemID).To(Equal("ghost"))
		Expect(db.feedback[0].Category).To(BeEmpty())
	})

	It("swallows storage failures", func() {
		db.feedbackErr = errors.New("db error")

		Expect(func() { feedbackLog.Learn("i1", actual) }).NotTo(Panic())
		Expect(db.feedback).To(BeEmpty())
	})
})
