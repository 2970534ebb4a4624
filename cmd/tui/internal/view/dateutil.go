package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a month/year window over the entry ledger.
type Period int

const (
	PeriodThisMonth Period = 0
	PeriodLastMonth Period = 1
	PeriodThisYear  Period = 2
	PeriodAll       Period = 3
	PeriodCustom    Period = 4
)

func (p Period) String() string {
	switch p {
	case PeriodThisMonth:
		return "Mês atual"
	case PeriodLastMonth:
		return "Mês anterior"
	case PeriodThisYear:
		return "Ano atual"
	case PeriodAll:
		return "Todo o período"
	case PeriodCustom:
		return "Personalizado"
	}

	return "Desconhecido"
}

// PeriodToFilter returns the month and year filters for a predefined period.
// A nil pointer leaves that dimension unfiltered.
func PeriodToFilter(p Period, now time.Time) (*int, *int) {
	switch p {
	case PeriodThisMonth:
		return new(int(now.Month())), new(now.Year())
	case PeriodLastMonth:
		prev := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		return new(int(prev.Month())), new(prev.Year())
	case PeriodThisYear:
		return nil, new(now.Year())
	}

	return nil, nil
}

// ParseCustomPeriod reads a user-typed month (optional) and year (required).
func ParseCustomPeriod(monthStr, yearStr string) (*int, *int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil || year < 1000 || year > 9999 {
		return nil, nil, fmt.Errorf("ano inválido (AAAA)")
	}

	monthStr = strings.TrimSpace(monthStr)
	if monthStr == "" {
		return nil, &year, nil
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return nil, nil, fmt.Errorf("mês inválido (1-12)")
	}

	return &month, &year, nil
}
