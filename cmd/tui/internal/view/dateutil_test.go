package view_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/minhasfinancas/cmd/tui/internal/view"
)

func TestPeriodToFilter(t *testing.T) {
	now := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		period    view.Period
		wantMonth *int
		wantYear  *int
	}{
		{name: "this month", period: view.PeriodThisMonth, wantMonth: new(1), wantYear: new(2026)},
		{name: "last month crosses year", period: view.PeriodLastMonth, wantMonth: new(12), wantYear: new(2025)},
		{name: "this year", period: view.PeriodThisYear, wantYear: new(2026)},
		{name: "all", period: view.PeriodAll},
		{name: "custom", period: view.PeriodCustom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			month, year := view.PeriodToFilter(tt.period, now)
			assert.Equal(t, tt.wantMonth, month)
			assert.Equal(t, tt.wantYear, year)
		})
	}
}

func TestParseCustomPeriod(t *testing.T) {
	month, year, err := view.ParseCustomPeriod(" 3 ", "2024")
	require.NoError(t, err)
	assert.Equal(t, 3, *month)
	assert.Equal(t, 2024, *year)

	month, year, err = view.ParseCustomPeriod("", "2024")
	require.NoError(t, err)
	assert.Nil(t, month)
	assert.Equal(t, 2024, *year)

	_, _, err = view.ParseCustomPeriod("13", "2024")
	assert.EqualError(t, err, "mês inválido (1-12)")

	_, _, err = view.ParseCustomPeriod("1", "24")
	assert.EqualError(t, err, "ano inválido (AAAA)")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "-1234,50", view.FormatValue(decimal.RequireFromString("-1234.5")))
	assert.Equal(t, "03/2024", view.FormatPeriod(3, 2024))
}
