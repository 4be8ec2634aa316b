package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryWith(t *testing.T) {
	t.Parallel()

	base := DefaultSummary()

	tests := []struct {
		name  string
		key   string
		value any
		check func(t *testing.T, s SummaryData)
	}{
		{"float", "capital", 250.5, func(t *testing.T, s SummaryData) { assert.Equal(t, 250.5, s.Capital) }},
		{"int", "totalTradingDays", 30, func(t *testing.T, s SummaryData) { assert.Equal(t, 30.0, s.TotalTradingDays) }},
		{"numeric string", "qtyPerLot", "12", func(t *testing.T, s SummaryData) { assert.Equal(t, 12.0, s.QtyPerLot) }},
		{"leading number", "workingCapital", "40abc", func(t *testing.T, s SummaryData) { assert.Equal(t, 40.0, s.WorkingCapital) }},
		{"unreadable string", "slPerTrade", "abc", func(t *testing.T, s SummaryData) { assert.Equal(t, 0.0, s.SLPerTrade) }},
		{"empty string", "tpPerTrade", "", func(t *testing.T, s SummaryData) { assert.Equal(t, 0.0, s.TPPerTrade) }},
		{"decimal string", "avgAssetMovement", " .5 ", func(t *testing.T, s SummaryData) { assert.Equal(t, 0.5, s.AvgAssetMovement) }},
		{"ratio", "plRatio", "2:5", func(t *testing.T, s SummaryData) { assert.Equal(t, "2:5", s.PLRatio) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := base.With(tt.key, tt.value)
			require.NoError(t, err)
			tt.check(t, got)

			// every other field untouched
			for _, k := range SummaryFields {
				if k == tt.key {
					continue
				}
				want, _ := base.Field(k)
				have, _ := got.Field(k)
				assert.Equal(t, want, have, k)
			}
		})
	}
}

func TestSummaryWithErrors(t *testing.T) {
	t.Parallel()

	s := DefaultSummary()

	_, err := s.With("leverage", 2.0)
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = s.With("capital", true)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = s.With("plRatio", 3)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = s.Field("nope")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestPLRatioParts(t *testing.T) {
	t.Parallel()

	a, b := SplitPLRatio("1:3")
	assert.Equal(t, "1", a)
	assert.Equal(t, "3", b)

	a, b = SplitPLRatio("")
	assert.Equal(t, "", a)
	assert.Equal(t, "", b)

	assert.Equal(t, "x:", JoinPLRatio("x", ""))

	s := DefaultSummary()
	s, err := s.WithPLRatioPart(1, "2")
	require.NoError(t, err)
	assert.Equal(t, "2:3", s.PLRatio)

	s, err = s.WithPLRatioPart(2, "")
	require.NoError(t, err)
	assert.Equal(t, "2:", s.PLRatio)

	_, err = s.WithPLRatioPart(3, "1")
	assert.ErrorIs(t, err, ErrInvalidValue)
}
