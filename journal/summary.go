package journal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SummaryData is the trader's planning parameters. There is one per
// journal.
type SummaryData struct {
	Capital          float64 `json:"capital"`
	TotalTradingDays float64 `json:"totalTradingDays"`
	QtyPerLot        float64 `json:"qtyPerLot"`
	WorkingCapital   float64 `json:"workingCapital"`
	AvgAssetMovement float64 `json:"avgAssetMovement"`
	MaxTradePerDay   float64 `json:"maxTradePerDay"`
	SLPerTrade       float64 `json:"slPerTrade"`
	TPPerTrade       float64 `json:"tpPerTrade"`
	// PLRatio is "a:b"; both parts are free text.
	PLRatio string `json:"plRatio"`
}

func DefaultSummary() SummaryData {
	return SummaryData{
		Capital:          100,
		TotalTradingDays: 50,
		QtyPerLot:        10,
		WorkingCapital:   20,
		AvgAssetMovement: 2,
		MaxTradePerDay:   2,
		SLPerTrade:       1,
		TPPerTrade:       3,
		PLRatio:          "1:3",
	}
}

const PLRatioField = "plRatio"

var numericFields = map[string]func(*SummaryData) *float64{
	"capital":          func(s *SummaryData) *float64 { return &s.Capital },
	"totalTradingDays": func(s *SummaryData) *float64 { return &s.TotalTradingDays },
	"qtyPerLot":        func(s *SummaryData) *float64 { return &s.QtyPerLot },
	"workingCapital":   func(s *SummaryData) *float64 { return &s.WorkingCapital },
	"avgAssetMovement": func(s *SummaryData) *float64 { return &s.AvgAssetMovement },
	"maxTradePerDay":   func(s *SummaryData) *float64 { return &s.MaxTradePerDay },
	"slPerTrade":       func(s *SummaryData) *float64 { return &s.SLPerTrade },
	"tpPerTrade":       func(s *SummaryData) *float64 { return &s.TPPerTrade },
}

// SummaryFields lists the editable field names in display order.
var SummaryFields = []string{
	"capital", "totalTradingDays", "qtyPerLot", "workingCapital",
	"avgAssetMovement", "maxTradePerDay", "slPerTrade", "tpPerTrade",
	PLRatioField,
}

// With returns a copy of s with one field replaced. Numeric fields take
// any Go number or a string, read like a form input: a leading number is
// used and anything unreadable becomes 0.
func (s SummaryData) With(key string, value any) (SummaryData, error) {
	if key == PLRatioField {
		switch v := value.(type) {
		case string:
			s.PLRatio = v
		case fmt.Stringer:
			s.PLRatio = v.String()
		default:
			return s, fmt.Errorf("%w: %s wants text, got %T", ErrInvalidValue, key, value)
		}
		return s, nil
	}

	field, ok := numericFields[key]
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}

	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		f = parseLeadingFloat(v)
	default:
		return s, fmt.Errorf("%w: %s wants a number, got %T", ErrInvalidValue, key, value)
	}
	*field(&s) = f
	return s, nil
}

// Field returns the current value of a field by name.
func (s SummaryData) Field(key string) (any, error) {
	if key == PLRatioField {
		return s.PLRatio, nil
	}
	field, ok := numericFields[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return *field(&s), nil
}

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

func parseLeadingFloat(s string) float64 {
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

// SplitPLRatio splits "a:b" into its two parts. Missing parts are empty.
func SplitPLRatio(ratio string) (string, string) {
	parts := strings.Split(ratio, ":")
	var a, b string
	if len(parts) > 0 {
		a = parts[0]
	}
	if len(parts) > 1 {
		b = parts[1]
	}
	return a, b
}

func JoinPLRatio(a, b string) string {
	return a + ":" + b
}

// WithPLRatioPart replaces part 1 or 2 of the ratio.
func (s SummaryData) WithPLRatioPart(part int, value string) (SummaryData, error) {
	a, b := SplitPLRatio(s.PLRatio)
	switch part {
	case 1:
		a = value
	case 2:
		b = value
	default:
		return s, fmt.Errorf("%w: ratio part %d", ErrInvalidValue, part)
	}
	s.PLRatio = JoinPLRatio(a, b)
	return s, nil
}
