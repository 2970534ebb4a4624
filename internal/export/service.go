// Package export writes a user's entries as a CSV statement.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
)

// Header matches the layout the importer reads back.
var Header = []string{"descricao", "mes", "ano", "valor", "tipo", "status"}

type EntrySearcher interface {
	Search(ctx context.Context, filter entry.Filter) ([]*entry.Entry, error)
}

type Service struct {
	entries EntrySearcher
}

func NewService(entries EntrySearcher) *Service {
	return &Service{entries: entries}
}

// Export writes every entry matching filter to w and returns how many rows were written.
func (s *Service) Export(ctx context.Context, w io.Writer, filter entry.Filter) (int, error) {
	entries, err := s.entries.Search(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("listing entries: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(Header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, e := range entries {
		if err := cw.Write(row(e)); err != nil {
			return 0, fmt.Errorf("writing entry %d: %w", e.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(entries), nil
}

func row(e *entry.Entry) []string {
	return []string{
		e.Description,
		strconv.Itoa(e.Month),
		strconv.Itoa(e.Year),
		strings.Replace(e.Value.StringFixed(2), ".", ",", 1),
		string(e.Type),
		string(e.Status),
	}
}

// Filename names the statement file for a user and period; zero month or year are left out.
func Filename(userID int64, year, month int) string {
	name := "lancamentos-" + strconv.FormatInt(userID, 10)

	if year != 0 {
		name += "-" + strconv.Itoa(year)
	}

	if month != 0 {
		name += fmt.Sprintf("-%02d", month)
	}

	return name + ".csv"
}
