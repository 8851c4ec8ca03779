package parsing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseReceipt", func() {
	var (
		text    string
		now     time.Time
		receipt Receipt
	)

	BeforeEach(func() {
		now = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	})

	JustBeforeEach(func() {
		receipt = ParseReceipt(text, now)
	})

	When("parsing a simple receipt", func() {
		BeforeEach(func() {
			text = "Green Grocer\nMilk 12.90\nBread 8.50\nTotal: 21.40\n"
		})

		It("should read the store name from the first line", func() {
			Expect(receipt.StoreName).To(Equal("Green Grocer"))
		})

		It("should return the item lines only", func() {
			Expect(receipt.Items).To(Equal([]RawLineItem{
				{RawName: "Milk", Price: 1290},
				{RawName: "Bread", Price: 850},
			}))
		})

		It("should read the total", func() {
			Expect(receipt.Total).To(Equal(2140))
		})

		It("should default the date to now", func() {
			Expect(receipt.Date).To(Equal(now))
		})

		It("should leave the address empty", func() {
			Expect(receipt.StoreAddress).To(BeEmpty())
		})
	})

	When("parsing a full receipt", func() {
		BeforeEach(func() {
			text = `
  FreshMart Supermarket
  123 Harbour Road, Springfield
  Date: 7/3/2024 14:22
  Bananas 1kg 3.20
  Greek Yogurt x2 $9.00
  500g Chicken Breast 25,50
  Thank you for shopping
  Subtotal 37.70
  Tax 1.10
  TOTAL 38.80
`
		})

		It("should read the store name", func() {
			Expect(receipt.StoreName).To(Equal("FreshMart Supermarket"))
		})

		It("should read the address up to the first comma", func() {
			Expect(receipt.StoreAddress).To(Equal("123 Harbour Road"))
		})

		It("should read the date day-first", func() {
			Expect(receipt.Date).To(Equal(time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)))
		})

		It("should read the total line rather than the subtotal", func() {
			Expect(receipt.Total).To(Equal(3880))
		})

		It("should keep items in order of appearance", func() {
			Expect(receipt.Items).To(Equal([]RawLineItem{
				{RawName: "Bananas 1kg", Price: 320},
				{RawName: "Greek Yogurt x2", Price: 900},
				{RawName: "500g Chicken Breast", Price: 2550},
			}))
		})
	})

	When("the date is not a calendar date", func() {
		BeforeEach(func() {
			text = "Shop\n31/02/2024\nMilk 1.00"
		})

		It("should default the date to now", func() {
			Expect(receipt.Date).To(Equal(now))
		})
	})

	When("the only line is an item", func() {
		BeforeEach(func() {
			text = "Fresh Milk 1L 12.90"
		})

		It("should use it as store name and item", func() {
			Expect(receipt.StoreName).To(Equal("Fresh Milk 1L 12.90"))
			Expect(receipt.Items).To(ConsistOf(RawLineItem{RawName: "Fresh Milk 1L", Price: 1290}))
		})
	})

	When("the text has no item lines", func() {
		BeforeEach(func() {
			text = "Corner Store\nTotal 10.00"
		})

		It("should return no items", func() {
			Expect(receipt.Items).To(BeEmpty())
		})

		It("should still read the total", func() {
			Expect(receipt.Total).To(Equal(1000))
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			text = ""
		})

		It("should fall back to defaults", func() {
			Expect(receipt.StoreName).To(BeEmpty())
			Expect(receipt.Total).To(BeZero())
			Expect(receipt.Items).To(BeEmpty())
		})
	})

	When("a numeric line has no description", func() {
		BeforeEach(func() {
			text = "Shop\n0042 19.99"
		})

		It("should drop it", func() {
			Expect(receipt.Items).To(BeEmpty())
		})
	})

	When("amounts use thousands separators", func() {
		BeforeEach(func() {
			text = "Shop\nTV Stand 1,234.56\nMilk 12.90\nTotal: 1,247.46"
		})

		It("should keep the grouped item", func() {
			Expect(receipt.Items).To(Equal([]RawLineItem{
				{RawName: "TV Stand", Price: 123456},
				{RawName: "Milk", Price: 1290},
			}))
		})

		It("should read the whole total", func() {
			Expect(receipt.Total).To(Equal(124746))
		})
	})

	When("an item is written in a non-Latin script", func() {
		BeforeEach(func() {
			text = "Магазин\nМолоко 12.90"
		})

		It("should keep it", func() {
			Expect(receipt.Items).To(ConsistOf(RawLineItem{RawName: "Молоко", Price: 1290}))
		})
	})

	DescribeTable("amounts",
		func(line string, wantItem int, wantTotal int) {
			r := ParseReceipt("Shop\n"+line+"\nTotal "+line[len("Thing "):], now)
			Expect(r.Items).To(HaveLen(1))
			Expect(r.Items[0].Price).To(Equal(wantItem))
			Expect(r.Total).To(Equal(wantTotal))
		},
		Entry("plain decimals", "Thing 12.90", 1290, 1290),
		Entry("decimal comma", "Thing 3,50", 350, 350),
		Entry("comma grouping", "Thing 1,234.56", 123456, 123456),
		Entry("dot grouping", "Thing 1.234,56", 123456, 123456),
		Entry("several groups", "Thing 1,234,567.89", 123456789, 123456789),
	)

	DescribeTable("totals without decimals",
		func(total string, want int) {
			Expect(ParseReceipt("Shop\nMilk 12.90\nTotal "+total, now).Total).To(Equal(want))
		},
		Entry("small", "5", 500),
		Entry("grouped", "1,247", 124700),
		Entry("one decimal", "21.4", 2140),
	)
})
