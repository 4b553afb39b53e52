package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DateStatus classifies the outcome of parsing a date cell
type DateStatus int

const (
	DateValid DateStatus = iota
	DateBlank
	DateSummary
	DateMalformed
)

func (s DateStatus) String() string {
	switch s {
	case DateValid:
		return "valid"
	case DateBlank:
		return "blank"
	case DateSummary:
		return "summary_row"
	default:
		return "unparseable"
	}
}

// maxExcelSerial is 9999-12-31
const maxExcelSerial = 2958465

var summaryMarkers = []string{"totale", "total", "subtotal", "summary", "riepilogo", "somma"}

var dateLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2006-01-02",
	"2006-1-2",
	"2-1-2006",
	"2.1.2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
}

var italianMonths = []struct {
	name  string
	abbr  string
	month time.Month
}{
	{"gennaio", "gen", time.January},
	{"febbraio", "feb", time.February},
	{"marzo", "mar", time.March},
	{"aprile", "apr", time.April},
	{"maggio", "mag", time.May},
	{"giugno", "giu", time.June},
	{"luglio", "lug", time.July},
	{"agosto", "ago", time.August},
	{"settembre", "set", time.September},
	{"ottobre", "ott", time.October},
	{"novembre", "nov", time.November},
	{"dicembre", "dic", time.December},
}

var (
	serialPattern = regexp.MustCompile(`^\d{1,7}(\.\d+)?$`)
	tokenSplitter = regexp.MustCompile(`[^\p{L}\d]+`)
)

// ParseDate converts a cell into a calendar date. Anything other than DateValid means the row
// is not a data row and must be dropped.
func ParseDate(v any) (time.Time, DateStatus) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, DateBlank
	case time.Time:
		if d.IsZero() {
			return time.Time{}, DateBlank
		}
		return day(d), DateValid
	case *time.Time:
		if d == nil {
			return time.Time{}, DateBlank
		}
		return ParseDate(*d)
	case float64:
		return fromSerial(d)
	case int:
		return fromSerial(float64(d))
	case int64:
		return fromSerial(float64(d))
	case string:
		return parseDateText(d)
	default:
		return time.Time{}, DateMalformed
	}
}

func parseDateText(raw string) (time.Time, DateStatus) {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	if s == "" || nullLike[lower] {
		return time.Time{}, DateBlank
	}
	for _, marker := range summaryMarkers {
		if strings.Contains(lower, marker) {
			return time.Time{}, DateSummary
		}
	}

	if len(s) == 8 && isDigits(s) {
		if t, err := time.Parse("02012006", s); err == nil {
			return day(t), DateValid
		}
		return time.Time{}, DateMalformed
	}
	if serialPattern.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return fromSerial(f)
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), DateValid
		}
	}

	return parseFreeText(lower)
}

// parseFreeText handles shapes like "15 marzo 2025", "sab 15 mar 25" or "marzo 15, 2025"
func parseFreeText(lower string) (time.Time, DateStatus) {
	tokens := tokenSplitter.Split(lower, -1)

	var month time.Month
	var numbers []string
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if isDigits(tok) {
			numbers = append(numbers, tok)
			continue
		}
		if m, ok := lookupMonth(tok); ok {
			month = m
		}
	}
	if month == 0 || len(numbers) == 0 {
		return time.Time{}, DateMalformed
	}

	dayNum, year := -1, -1
	for _, n := range numbers {
		v, _ := strconv.Atoi(n)
		switch {
		case len(n) == 4 && year < 0:
			year = v
		case dayNum < 0 && v >= 1 && v <= 31 && len(n) <= 2:
			dayNum = v
		case year < 0 && len(n) == 2:
			year = 2000 + v
		}
	}
	if dayNum < 0 || year < 0 {
		return time.Time{}, DateMalformed
	}

	t := time.Date(year, month, dayNum, 0, 0, 0, 0, time.UTC)
	if t.Day() != dayNum || t.Month() != month {
		return time.Time{}, DateMalformed
	}
	return t, DateValid
}

func lookupMonth(tok string) (time.Month, bool) {
	for _, m := range italianMonths {
		if tok == m.name {
			return m.month, true
		}
	}
	for _, m := range italianMonths {
		if tok == m.abbr || (len(tok) > 3 && strings.HasPrefix(m.name, tok)) {
			return m.month, true
		}
	}
	return 0, false
}

func fromSerial(f float64) (time.Time, DateStatus) {
	if f < 1 || f > maxExcelSerial {
		return time.Time{}, DateMalformed
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, DateMalformed
	}
	return day(t), DateValid
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
