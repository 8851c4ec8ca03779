package parsing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// RawLineItem is a receipt line recognised as a product and its price
type RawLineItem struct {
	RawName string `json:"raw_name"`
	Price   int    `json:"price"` // Price in cents
}

// Receipt holds the header fields and line items read from receipt text
type Receipt struct {
	StoreName    string
	StoreAddress string
	Date         time.Time
	Total        int // Total in cents
	Items        []RawLineItem
}

// Amounts may carry thousands separators: 1,234.56 or 1.234,56
const (
	groupedDigits = `\d{1,3}(?:[.,]\d{3})+`
	priceAmount   = groupedDigits + `[.,]\d{2}|\d+[.,]\d{2}`
	totalAmount   = groupedDigits + `(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?`
)

var (
	itemLineRe = regexp.MustCompile(`^(.+?)\s+\$?(` + priceAmount + `)$`)
	totalRe    = regexp.MustCompile(`(?i)\btotal\b[^\d\n]*(` + totalAmount + `)`)
	dateRe     = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	addressRe  = regexp.MustCompile(`^(\d+\s+[^,\d][^,]*)`)
)

// lineRule handles one kind of body line; the first rule whose match
// returns true consumes the line
type lineRule struct {
	match func(line string) bool
	apply func(r *Receipt, line string)
}

var lineRules = []lineRule{
	{match: isSummaryLine, apply: func(*Receipt, string) {}},
	{match: isItemLine, apply: appendItem},
	{match: addressRe.MatchString, apply: setAddress},
}

// ParseReceipt reads store details and line items from OCR text. It never
// fails: missing fields fall back to defaults (now for the date, zero for
// the total) and unrecognised lines are dropped.
func ParseReceipt(text string, now time.Time) Receipt {
	r := Receipt{
		Date:  parseDate(text, now),
		Total: parseTotal(text),
		Items: make([]RawLineItem, 0),
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r.StoreName == "" {
			r.StoreName = line
		}
		for _, rule := range lineRules {
			if rule.match(line) {
				rule.apply(&r, line)
				break
			}
		}
	}

	return r
}

func isSummaryLine(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "total") || strings.Contains(lower, "tax")
}

func isItemLine(line string) bool {
	m := itemLineRe.FindStringSubmatch(line)
	return m != nil && hasLetters(m[1])
}

func appendItem(r *Receipt, line string) {
	m := itemLineRe.FindStringSubmatch(line)
	r.Items = append(r.Items, RawLineItem{
		RawName: strings.TrimSpace(m[1]),
		Price:   toCents(m[2]),
	})
}

func setAddress(r *Receipt, line string) {
	if r.StoreAddress != "" {
		return
	}
	r.StoreAddress = strings.TrimSpace(addressRe.FindString(line))
}

func parseTotal(text string) int {
	m := totalRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	return toCents(m[1])
}

// parseDate reads the first day-first D/M/YYYY date, falling back to now
// when there is none or it is not a real calendar date
func parseDate(text string, now time.Time) time.Time {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return now
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if d.Day() != day || int(d.Month()) != month {
		return now
	}
	return d
}

var separatorStripper = strings.NewReplacer(".", "", ",", "")

// toCents reads an amount whose last separator is the decimal point when
// one or two digits follow it; every other separator groups thousands
func toCents(s string) int {
	if i := strings.LastIndexAny(s, ".,"); i >= 0 && len(s)-i-1 <= 2 {
		s = separatorStripper.Replace(s[:i]) + "." + s[i+1:]
	} else {
		s = separatorStripper.Replace(s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(math.Round(f * 100))
}

func hasLetters(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
