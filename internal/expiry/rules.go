package expiry

import (
	"errors"
	"fmt"
)

// Category is a food grouping used to select shelf-life rules
type Category string

const (
	Fruits     Category = "fruits"
	Vegetables Category = "vegetables"
	Dairy      Category = "dairy"
	Meat       Category = "meat"
	Bakery     Category = "bakery"
	Frozen     Category = "frozen"
	Pantry     Category = "pantry"
	Snacks     Category = "snacks"
	Beverages  Category = "beverages"
	Other      Category = "other"
)

// ErrRuleNotFound is returned when a category has no rule in the table
var ErrRuleNotFound = errors.New("expiry rule not found")

// StorageShelfLife holds shelf life in days per storage condition
type StorageShelfLife struct {
	Room         int `json:"room"`
	Refrigerated int `json:"refrigerated"`
	Frozen       int `json:"frozen"`
}

// Rule describes how long items of one category keep and how to recognise them
type Rule struct {
	Category          Category         `json:"category"`
	BaseShelfLifeDays int              `json:"base_shelf_life_days"`
	Storage           StorageShelfLife `json:"storage"`
	Keywords          []string         `json:"keywords"`
}

// defaultRules is ordered: when a name matches keywords of several
// categories, the earliest rule wins.
var defaultRules = []Rule{
	{
		Category:          Fruits,
		BaseShelfLifeDays: 7,
		Storage:           StorageShelfLife{Room: 5, Refrigerated: 14, Frozen: 180},
		Keywords: []string{"apple", "banana", "orange", "strawberr", "grape", "fruit", "citrus",
			"lemon", "lime", "pear", "peach", "mango", "berry", "melon", "kiwi", "cherr", "avocado"},
	},
	{
		Category:          Vegetables,
		BaseShelfLifeDays: 7,
		Storage:           StorageShelfLife{Room: 5, Refrigerated: 14, Frozen: 240},
		Keywords: []string{"carrot", "potato", "tomato", "onion", "vegetable", "salad", "lettuce",
			"spinach", "broccoli", "cucumber", "pepper", "cabbage", "garlic", "mushroom", "celery", "zucchini"},
	},
	{
		Category:          Dairy,
		BaseShelfLifeDays: 21,
		Storage:           StorageShelfLife{Room: 1, Refrigerated: 14, Frozen: 90},
		Keywords:          []string{"milk", "cheese", "yogurt", "yoghurt", "butter", "cream", "kefir"},
	},
	{
		Category:          Meat,
		BaseShelfLifeDays: 5,
		Storage:           StorageShelfLife{Room: 1, Refrigerated: 3, Frozen: 180},
		Keywords: []string{"chicken", "beef", "pork", "fish", "meat", "steak", "salmon", "turkey",
			"bacon", "sausage", "lamb", "tuna", "shrimp", "mince"},
	},
	{
		Category:          Bakery,
		BaseShelfLifeDays: 5,
		Storage:           StorageShelfLife{Room: 5, Refrigerated: 10, Frozen: 90},
		Keywords: []string{"bread", "bagel", "cake", "pastry", "croissant", "muffin", "baguette",
			"roll", "donut", "tortilla"},
	},
	{
		Category:          Frozen,
		BaseShelfLifeDays: 180,
		Storage:           StorageShelfLife{Room: 1, Refrigerated: 3, Frozen: 180},
		Keywords:          []string{"frozen", "ice cream", "popsicle", "sorbet"},
	},
	{
		Category:          Pantry,
		BaseShelfLifeDays: 365,
		Storage:           StorageShelfLife{Room: 365, Refrigerated: 365, Frozen: 730},
		Keywords: []string{"pasta", "rice", "beans", "cereal", "canned", "flour", "sugar", "oats",
			"noodle", "sauce", "soup", "lentil", "oil"},
	},
	{
		Category:          Snacks,
		BaseShelfLifeDays: 60,
		Storage:           StorageShelfLife{Room: 60, Refrigerated: 90, Frozen: 180},
		Keywords:          []string{"chips", "crackers", "cookie", "candy", "chocolate", "popcorn", "pretzel", "nuts"},
	},
	{
		Category:          Beverages,
		BaseShelfLifeDays: 90,
		Storage:           StorageShelfLife{Room: 90, Refrigerated: 120, Frozen: 180},
		Keywords:          []string{"juice", "soda", "water", "beer", "wine", "coffee", "cola", "drink"},
	},
	{
		Category:          Other,
		BaseShelfLifeDays: 7,
		Storage:           StorageShelfLife{Room: 7, Refrigerated: 14, Frozen: 90},
	},
}

// Table is an immutable, ordered set of expiry rules
type Table struct {
	rules      []Rule
	byCategory map[Category]Rule
}

var defaultTable = mustTable(defaultRules)

// DefaultTable returns the process-wide rule table
func DefaultTable() *Table {
	return defaultTable
}

// NewTable validates rules and builds a table that keeps their order
func NewTable(rules []Rule) (*Table, error) {
	t := &Table{
		rules:      make([]Rule, 0, len(rules)),
		byCategory: make(map[Category]Rule, len(rules)),
	}
	for _, r := range rules {
		if _, dup := t.byCategory[r.Category]; dup {
			return nil, fmt.Errorf("duplicate rule for category %q", r.Category)
		}
		if r.BaseShelfLifeDays < 1 {
			return nil, fmt.Errorf("rule %q: base shelf life must be at least 1 day", r.Category)
		}
		if len(r.Keywords) == 0 && r.Category != Other {
			return nil, fmt.Errorf("rule %q: keywords are required", r.Category)
		}
		r.Keywords = append([]string(nil), r.Keywords...)
		t.rules = append(t.rules, r)
		t.byCategory[r.Category] = r
	}
	return t, nil
}

func mustTable(rules []Rule) *Table {
	t, err := NewTable(rules)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the rule for a category
func (t *Table) Lookup(c Category) (Rule, error) {
	r, ok := t.byCategory[c]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %s", ErrRuleNotFound, c)
	}
	return r, nil
}

// Categories returns the categories in priority order
func (t *Table) Categories() []Category {
	out := make([]Category, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Category
	}
	return out
}
