package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads "1.234,56", "-588,74", "R$ 10,00" and "1234.56" alike.
// A comma marks the Brazilian format, where dots group thousands.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.ReplaceAll(clean, " ", "")

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	return decimal.NewFromString(clean)
}
