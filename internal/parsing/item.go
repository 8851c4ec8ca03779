package parsing

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// DefaultUnit is reported when a name carries no recognisable unit
const DefaultUnit = "units"

const unitPattern = `(pieces|piece|units|unit|pcs|pc|kg|ml|g|l)`

// ParsedQuantity is an item name split into its name, quantity and unit
type ParsedQuantity struct {
	CleanName string  `json:"clean_name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
}

// itemRule tries one name shape; ok is false when the shape does not apply
type itemRule struct {
	name  string
	parse func(raw string) (ParsedQuantity, bool)
}

var (
	trailingUnitRe = regexp.MustCompile(`(?i)^(.+?)\s+(\d+(?:[.,]\d+)?)\s*` + unitPattern + `$`)
	multiplierRe   = regexp.MustCompile(`(?i)^(.+?)\s+x\s*(\d+)$`)
	leadingUnitRe  = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)\s*` + unitPattern + `\s+(.+)$`)
)

// itemRules are tried in order and the first match wins
var itemRules = []itemRule{
	{name: "trailing-unit", parse: parseTrailingUnit},
	{name: "multiplier", parse: parseMultiplier},
	{name: "leading-unit", parse: parseLeadingUnit},
}

// ParseItemName splits a raw item name. It never fails: names that match
// no rule come back whole with a quantity of one.
func ParseItemName(raw string) ParsedQuantity {
	raw = strings.Join(strings.Fields(raw), " ")
	for _, r := range itemRules {
		if pq, ok := r.parse(raw); ok {
			slog.Debug("Parsed item name", "raw", raw, "rule", r.name)
			return pq
		}
	}
	return ParsedQuantity{CleanName: raw, Quantity: 1, Unit: DefaultUnit}
}

func parseTrailingUnit(raw string) (ParsedQuantity, bool) {
	m := trailingUnitRe.FindStringSubmatch(raw)
	if m == nil {
		return ParsedQuantity{}, false
	}
	return newParsedQuantity(m[1], m[2], m[3])
}

func parseMultiplier(raw string) (ParsedQuantity, bool) {
	m := multiplierRe.FindStringSubmatch(raw)
	if m == nil {
		return ParsedQuantity{}, false
	}
	return newParsedQuantity(m[1], m[2], DefaultUnit)
}

func parseLeadingUnit(raw string) (ParsedQuantity, bool) {
	m := leadingUnitRe.FindStringSubmatch(raw)
	if m == nil {
		return ParsedQuantity{}, false
	}
	return newParsedQuantity(m[3], m[1], m[2])
}

func newParsedQuantity(name, qty, unit string) (ParsedQuantity, bool) {
	q, err := strconv.ParseFloat(strings.Replace(qty, ",", ".", 1), 64)
	name = strings.TrimSpace(name)
	if err != nil || q <= 0 || name == "" {
		return ParsedQuantity{}, false
	}
	return ParsedQuantity{
		CleanName: name,
		Quantity:  q,
		Unit:      strings.ToLower(unit),
	}, true
}
