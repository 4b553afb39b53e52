package dataprocessing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// CellStatus classifies the outcome of parsing a single cell
type CellStatus int

const (
	CellValid CellStatus = iota
	CellEmpty
	CellMalformed
)

func (s CellStatus) String() string {
	switch s {
	case CellValid:
		return "valid"
	case CellEmpty:
		return "empty"
	default:
		return "malformed"
	}
}

var nullLike = map[string]bool{
	"nan":  true,
	"none": true,
	"null": true,
	"nil":  true,
	"n/a":  true,
	"#n/a": true,
	"-":    true,
	"--":   true,
}

var numberReplacer = strings.NewReplacer("€", "", "%", "", "$", "", " ", "", "\u00a0", "", "\u202f", "", "'", "")

// NormalizeNumber converts a cell to a float, returning 0 for anything empty or unparseable
func NormalizeNumber(v any) float64 {
	f, _ := ParseNumber(v)
	return f
}

// ParseNumber converts a numeric-or-text cell to a float and reports how the value was obtained.
// The value is always 0 unless the status is CellValid.
func ParseNumber(v any) (float64, CellStatus) {
	switch n := v.(type) {
	case nil:
		return 0, CellEmpty
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), CellValid
	case int64:
		return float64(n), CellValid
	case int32:
		return float64(n), CellValid
	case uint:
		return float64(n), CellValid
	case uint64:
		return float64(n), CellValid
	case uint32:
		return float64(n), CellValid
	case decimal.Decimal:
		return n.InexactFloat64(), CellValid
	case string:
		return parseNumberText(n)
	case []byte:
		return parseNumberText(string(n))
	default:
		return 0, CellMalformed
	}
}

func parseNumberText(raw string) (float64, CellStatus) {
	s := strings.TrimSpace(raw)
	if s == "" || nullLike[strings.ToLower(s)] {
		return 0, CellEmpty
	}

	s = numberReplacer.Replace(s)
	if s == "" {
		return 0, CellMalformed
	}

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, CellMalformed
	}
	return finite(d.InexactFloat64())
}

func finite(f float64) (float64, CellStatus) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, CellMalformed
	}
	return f, CellValid
}

// Round2 rounds half away from zero to two decimal places
func Round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}
