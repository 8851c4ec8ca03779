package expiry

import (
	"math"
	"strings"
	"time"
)

const (
	// FallbackShelfLifeDays applies when a category has no rule
	FallbackShelfLifeDays = 30

	// MaxConfidence is the ceiling for every confidence score
	MaxConfidence = 0.95

	baseConfidence     = 0.5
	keywordBonus       = 0.15
	vagueNamePenalty   = 0.7
	specificNameBoost  = 1.2
	qualityShelfFactor = 1.2
)

var (
	genericTokens  = []string{"item", "product"}
	qualityTokens  = []string{"organic", "premium"}
	specificTokens = []string{"organic", "fresh"}
)

// Estimate is the result of estimating one item's expiry
type Estimate struct {
	ExpiresOn     time.Time
	ShelfLifeDays int
	Confidence    float64
}

// Estimator computes shelf life and confidence from a name and category
type Estimator struct {
	table *Table
}

// NewEstimator creates an Estimator over the given table.
// A nil table means the default one.
func NewEstimator(table *Table) *Estimator {
	if table == nil {
		table = DefaultTable()
	}
	return &Estimator{table: table}
}

// Estimate computes the expiry of an item bought on processedAt
func (e *Estimator) Estimate(name string, category Category, processedAt time.Time) Estimate {
	return e.EstimateItem(name, name, category, processedAt)
}

// EstimateItem is Estimate for a receipt line whose quantity and unit have
// been stripped. Storage and keyword signals come from the raw name; the
// name length and wording checks use the clean name.
func (e *Estimator) EstimateItem(rawName, cleanName string, category Category, processedAt time.Time) Estimate {
	lower := strings.ToLower(strings.TrimSpace(rawName))
	clean := strings.ToLower(strings.TrimSpace(cleanName))
	if clean == "" {
		clean = lower
	}

	rule, err := e.table.Lookup(category)
	days := FallbackShelfLifeDays
	if err == nil {
		days = shelfLifeDays(lower, rule)
	}

	day := time.Date(processedAt.Year(), processedAt.Month(), processedAt.Day(), 0, 0, 0, 0, processedAt.Location())
	return Estimate{
		ExpiresOn:     day.AddDate(0, 0, days),
		ShelfLifeDays: days,
		Confidence:    confidence(lower, clean, rule.Keywords),
	}
}

func shelfLifeDays(lower string, rule Rule) int {
	days := rule.BaseShelfLifeDays
	switch {
	case strings.Contains(lower, "fresh"):
		days = min(days, rule.Storage.Refrigerated)
	case strings.Contains(lower, "frozen"):
		days = rule.Storage.Frozen
	case rule.Category == Dairy || rule.Category == Meat:
		days = rule.Storage.Refrigerated
	}
	if containsAny(lower, qualityTokens) {
		days = int(math.Floor(float64(days) * qualityShelfFactor))
	}
	return max(days, 1)
}

func confidence(lower, clean string, keywords []string) float64 {
	c := baseConfidence
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			c += keywordBonus
		}
	}
	c = min(c, MaxConfidence)

	if len(clean) < 5 || containsAny(clean, genericTokens) {
		c *= vagueNamePenalty
	}
	if len(clean) > 15 || containsAny(clean, specificTokens) {
		c = min(c*specificNameBoost, MaxConfidence)
	}
	return Round(Clamp(c))
}

// Clamp bounds a confidence score to [0, MaxConfidence]
func Clamp(c float64) float64 {
	return math.Max(0, math.Min(c, MaxConfidence))
}

// Round rounds a confidence score to two decimals
func Round(c float64) float64 {
	return math.Round(c*100) / 100
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
