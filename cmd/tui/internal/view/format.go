package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/apperr"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
)

const dbTimeout = 5 * time.Second

// FormatValue renders a monetary value with two decimals and a decimal comma.
func FormatValue(v decimal.Decimal) string {
	return strings.Replace(v.StringFixed(2), ".", ",", 1)
}

// FormatPeriod renders a month/year pair as MM/YYYY.
func FormatPeriod(month, year int) string {
	return fmt.Sprintf("%02d/%04d", month, year)
}

// ErrorText prefers the client-facing message carried by domain errors.
func ErrorText(err error) string {
	var batchErr *entry.BatchError
	if errors.As(err, &batchErr) {
		return batchErr.Error()
	}

	if msg := apperr.Message(err); msg != "" {
		return msg
	}

	return err.Error()
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
