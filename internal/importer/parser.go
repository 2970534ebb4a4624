package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/apperr"
	enc "github.com/MrJamesThe3rd/minhasfinancas/internal/encoding"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
)

var ErrUnknownFormat = apperr.BusinessRule(
	"Formato de arquivo não reconhecido. Use as colunas descricao;mes;ano;valor;tipo ou um extrato com data;descricao;valor.")

var dateLayouts = []string{"02/01/2006", "2006-01-02", "02-01-2006"}

// Parser reads CSV files and produces entries for a single user. It detects
// the layout by matching the header row against known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader, userID int64) ([]*entry.Entry, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrUnknownFormat
	}

	slog.Debug("parsing statement", "profile", profile.Name, "charset", charset, "rows", len(rows)-headerIdx-1)

	return parseRows(profile, cols, rows[headerIdx+1:], userID), nil
}

// detectDelimiter picks ';' unless the first line has more commas than semicolons.
func detectDelimiter(data []byte) rune {
	first, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(first, []byte(",")) > bytes.Count(first, []byte(";")) {
		return ','
	}

	return ';'
}

// colIndex maps normalized column names to their index in the row.
type colIndex map[string]int

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeHeader lowercases s and strips accents and trailing punctuation,
// so "Descrição", "DESCRICAO" and "Data mov." all compare predictably.
func normalizeHeader(s string) string {
	folded, _, err := transform.String(foldAccents, s)
	if err != nil {
		folded = s
	}

	return strings.TrimRight(strings.ToLower(strings.TrimSpace(folded)), ".:")
}

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := normalizeHeader(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips blank rows and, for dated layouts, rows without a readable
// date such as balance lines and footers. Field problems are left for entry
// validation to report.
func parseRows(p *Profile, cols colIndex, rows [][]string, userID int64) []*entry.Entry {
	entries := []*entry.Entry{}

	for _, row := range rows {
		if isBlank(row) {
			continue
		}

		e := &entry.Entry{
			Description: cellValue(row, cols[p.DescCol]),
			UserID:      userID,
		}

		if p.DateCol != "" {
			date, ok := parseDate(cellValue(row, cols[p.DateCol]))
			if !ok {
				continue
			}

			e.Month = int(date.Month())
			e.Year = date.Year()
		} else {
			e.Month = atoi(cellValue(row, cols[p.MonthCol]))
			e.Year = atoi(cellValue(row, cols[p.YearCol]))
		}

		value, typ, ok := parseValue(p, cols, row)
		if !ok && p.DateCol != "" {
			continue
		}

		e.Value = value
		e.Type = typ

		entries = append(entries, e)
	}

	return entries
}

func parseValue(p *Profile, cols colIndex, row []string) (decimal.Decimal, entry.Type, bool) {
	switch p.AmountMode {
	case amountTyped:
		value, err := parseAmount(cellValue(row, cols[p.AmountCol]))
		if err != nil {
			return decimal.Zero, "", false
		}

		typ, _ := entry.ParseType(cellValue(row, cols[p.TypeCol]))

		return value, typ, true
	case amountSigned:
		value, err := parseAmount(cellValue(row, cols[p.AmountCol]))
		if err != nil || value.IsZero() {
			return decimal.Zero, "", false
		}

		if value.IsNegative() {
			return value.Neg(), entry.TypeExpense, true
		}

		return value, entry.TypeIncome, true
	case amountSplit:
		if debit, err := parseAmount(cellValue(row, cols[p.DebitCol])); err == nil && !debit.IsZero() {
			return debit.Abs(), entry.TypeExpense, true
		}

		if credit, err := parseAmount(cellValue(row, cols[p.CreditCol])); err == nil && !credit.IsZero() {
			return credit.Abs(), entry.TypeIncome, true
		}
	}

	return decimal.Zero, "", false
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
