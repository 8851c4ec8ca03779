package expiry

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Categorizer", func() {
	var categorizer *Categorizer

	BeforeEach(func() {
		categorizer = NewCategorizer(nil)
	})

	DescribeTable("Categorize",
		func(name string, expected Category) {
			Expect(categorizer.Categorize(name)).To(Equal(expected))
		},
		Entry("vegetables", "fresh spinach", Vegetables),
		Entry("no keyword", "xyz123", Other),
		Entry("empty name", "", Other),
		Entry("case-insensitive", "BANANAS", Fruits),
		Entry("dairy", "Fresh Milk", Dairy),
		Entry("meat", "Chicken Breast", Meat),
		Entry("bakery", "Sourdough Bread", Bakery),
		Entry("frozen", "Frozen Peas", Frozen),
		Entry("pantry", "Basmati Rice", Pantry),
		Entry("snacks", "Salted Pretzels", Snacks),
		Entry("earlier category wins", "Potato Chips", Vegetables),
		Entry("beverages", "Sparkling Water", Beverages),
		Entry("table order breaks ties", "Chocolate Milk", Dairy),
	)

	When("using a custom table", func() {
		BeforeEach(func() {
			table, err := NewTable([]Rule{
				{Category: Snacks, BaseShelfLifeDays: 30, Keywords: []string{"chocolate"}},
				{Category: Dairy, BaseShelfLifeDays: 7, Keywords: []string{"milk"}},
			})
			Expect(err).NotTo(HaveOccurred())
			categorizer = NewCategorizer(table)
		})

		It("should follow that table's order", func() {
			Expect(categorizer.Categorize("Chocolate Milk")).To(Equal(Snacks))
		})
	})
})
