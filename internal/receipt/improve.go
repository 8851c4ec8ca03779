package receipt

import (
	"context"
	"fmt"
	"strings"

	"github.com/zombor/pantry-tracker/internal/expiry"
	"github.com/zombor/pantry-tracker/internal/scanning"
)

// corroborationBonus is added per piece of evidence found on the photo
const corroborationBonus = 0.1

// PhotoCorroborator raises an item's confidence when the text on a photo
// of the product (label, packaging) supports its category or name
type PhotoCorroborator struct {
	scanner scanning.Scanner
	table   *expiry.Table
}

// NewPhotoCorroborator creates a PhotoCorroborator
func NewPhotoCorroborator(scanner scanning.Scanner, table *expiry.Table) *PhotoCorroborator {
	if table == nil {
		table = expiry.DefaultTable()
	}
	return &PhotoCorroborator{scanner: scanner, table: table}
}

// Improve reads the photo and adds a bonus for each category keyword and
// for the item name appearing on it, capped at the maximum confidence
func (p *PhotoCorroborator) Improve(ctx context.Context, item Item, photo []byte, contentType string) (Item, error) {
	text, err := p.scanner.ExtractText(ctx, photo, contentType)
	if err != nil {
		return item, fmt.Errorf("%w: %w", ErrOCRFailure, err)
	}
	text = strings.ToLower(text)

	var bonus float64
	if rule, err := p.table.Lookup(item.Category); err == nil {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				bonus += corroborationBonus
			}
		}
	}
	if name := strings.ToLower(item.Name); name != "" && strings.Contains(text, name) {
		bonus += corroborationBonus
	}

	item.Confidence = expiry.Round(expiry.Clamp(item.Confidence + bonus))
	return item, nil
}
