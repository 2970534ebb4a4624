// Package importer turns uploaded CSV statements into ledger entries.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
)

type EntryCreator interface {
	Validate(e *entry.Entry) error
	CreateBatch(ctx context.Context, entries []*entry.Entry) ([]*entry.Entry, error)
}

type DescriptionRewriter interface {
	Rewrite(ctx context.Context, userID int64, descriptions []*string) int
}

type Service struct {
	parser   *Parser
	entries  EntryCreator
	rewriter DescriptionRewriter
}

// NewService builds an importer; rewriter may be nil to keep descriptions as parsed.
func NewService(entries EntryCreator, rewriter DescriptionRewriter) *Service {
	return &Service{
		parser:   NewParser(),
		entries:  entries,
		rewriter: rewriter,
	}
}

// Preview parses r for userID and applies known description mappings without
// storing anything. The first row that would fail validation is reported as
// an *entry.BatchError.
func (s *Service) Preview(ctx context.Context, userID int64, r io.Reader) ([]*entry.Entry, error) {
	parsed, err := s.parser.Parse(r, userID)
	if err != nil {
		return nil, err
	}

	if s.rewriter != nil {
		descs := make([]*string, len(parsed))
		for i, e := range parsed {
			descs[i] = &e.Description
		}

		if n := s.rewriter.Rewrite(ctx, userID, descs); n > 0 {
			slog.Debug("rewrote imported descriptions", "count", n)
		}
	}

	for i, e := range parsed {
		if err := s.entries.Validate(e); err != nil {
			return nil, &entry.BatchError{Index: i, Err: err}
		}
	}

	return parsed, nil
}

// Save stores previewed entries as pending, all or nothing.
func (s *Service) Save(ctx context.Context, entries []*entry.Entry) ([]*entry.Entry, error) {
	created, err := s.entries.CreateBatch(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("importing entries: %w", err)
	}

	return created, nil
}

// Import previews r and saves the result. A single invalid row rejects the whole file.
func (s *Service) Import(ctx context.Context, userID int64, r io.Reader) ([]*entry.Entry, error) {
	parsed, err := s.Preview(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	return s.Save(ctx, parsed)
}
