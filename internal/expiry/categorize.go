package expiry

import "strings"

// Categorizer assigns one category to an item name by keyword matching
type Categorizer struct {
	table *Table
}

// NewCategorizer creates a Categorizer over the given table.
// A nil table means the default one.
func NewCategorizer(table *Table) *Categorizer {
	if table == nil {
		table = DefaultTable()
	}
	return &Categorizer{table: table}
}

// Categorize returns the first category, in table order, with a keyword
// contained in name. Names matching nothing are Other.
func (c *Categorizer) Categorize(name string) Category {
	lower := strings.ToLower(name)
	for _, r := range c.table.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Category
			}
		}
	}
	return Other
}
