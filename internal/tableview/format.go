package tableview

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	monetaryColumn = regexp.MustCompile(`(?i)(price|cost|amount|total|revenue|sales)`)
	isoDatePrefix  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

	printer = message.NewPrinter(language.English)
)

// FormatColumn turns a data key into a column header: underscores become
// spaces and each word is capitalized.
func FormatColumn(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Monetary reports whether a column name suggests a money value.
func Monetary(column string) bool {
	return monetaryColumn.MatchString(column)
}

// FormatCell renders a cell for display. Nulls become a placeholder, numbers
// get thousands grouping with a dollar prefix on money-looking columns, and
// ISO date strings become a readable date. Everything else passes through.
func FormatCell(column string, value any) string {
	if value == nil {
		return "-"
	}

	// Anything that parses as a finite number is grouped, whether it arrived
	// as a JSON number or as a string.
	if f, ok := cellNumber(value); ok {
		return formatNumber(column, f)
	}

	if s, ok := value.(string); ok {
		if isoDatePrefix.MatchString(s) {
			if formatted, ok := formatDate(s); ok {
				return formatted
			}
		}
		return s
	}

	return fmt.Sprintf("%v", value)
}

func formatNumber(column string, f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprintf("%v", f)
	}
	var grouped string
	if f == math.Trunc(f) {
		grouped = printer.Sprint(number.Decimal(int64(f)))
	} else {
		grouped = printer.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
	}
	if Monetary(column) {
		return "$" + grouped
	}
	return grouped
}

// formatDate accepts full RFC 3339 timestamps and bare YYYY-MM-DD dates.
// Anything else is left for the caller to render verbatim.
func formatDate(s string) (string, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("Jan 2, 2006"), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("Jan 2, 2006"), true
	}
	return "", false
}
