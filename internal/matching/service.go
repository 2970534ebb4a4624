// Package matching rewrites raw statement descriptions into the names a user prefers.
package matching

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/apperr"
)

// Column widths of mapeamentos_descricao, in characters.
const (
	maxPatternLength     = 150
	maxDescriptionLength = 100
)

var (
	ErrEmptyPattern       = apperr.BusinessRule("Informe um padrão de descrição.")
	ErrEmptyDescription   = apperr.BusinessRule("Informe uma descrição válida.")
	ErrPatternTooLong     = apperr.BusinessRule("O padrão deve ter no máximo 150 caracteres.")
	ErrDescriptionTooLong = apperr.BusinessRule("A descrição deve ter no máximo 100 caracteres.")
	ErrNotFound           = apperr.NotFound("Mapeamento não encontrado.")
)

// Mapping renames every description of its user that contains Pattern.
type Mapping struct {
	ID        int64
	UserID    int64
	Pattern   string
	Preferred string
	CreatedAt time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns "" when none of the user's patterns is contained in rawDescription.
	FindMatch(ctx context.Context, userID int64, rawDescription string) (string, error)
	// SaveMapping replaces the preferred description when the user already has the pattern.
	SaveMapping(ctx context.Context, m *Mapping) error
	ListMappings(ctx context.Context, userID int64) ([]*Mapping, error)
	// DeleteMapping returns ErrNotFound when the user owns no mapping with id.
	DeleteMapping(ctx context.Context, userID, id int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the preferred description for rawDescription, or "" when none is known.
func (s *Service) Suggest(ctx context.Context, userID int64, rawDescription string) (string, error) {
	raw := strings.TrimSpace(rawDescription)
	if raw == "" {
		return "", nil
	}

	return s.repo.FindMatch(ctx, userID, raw)
}

// Learn maps every description of userID containing pattern to preferred.
func (s *Service) Learn(ctx context.Context, userID int64, pattern, preferred string) (*Mapping, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, ErrEmptyPattern
	}

	if utf8.RuneCountInString(pattern) > maxPatternLength {
		return nil, ErrPatternTooLong
	}

	preferred = strings.TrimSpace(preferred)
	if preferred == "" {
		return nil, ErrEmptyDescription
	}

	if utf8.RuneCountInString(preferred) > maxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	m := &Mapping{UserID: userID, Pattern: pattern, Preferred: preferred}
	if err := s.repo.SaveMapping(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*Mapping, error) {
	mappings, err := s.repo.ListMappings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if mappings == nil {
		mappings = []*Mapping{}
	}

	return mappings, nil
}

func (s *Service) Forget(ctx context.Context, userID, id int64) error {
	return s.repo.DeleteMapping(ctx, userID, id)
}

// Rewrite replaces each description that has a known mapping and returns how
// many were rewritten. Lookup failures leave the description untouched.
func (s *Service) Rewrite(ctx context.Context, userID int64, descriptions []*string) int {
	rewritten := 0

	for _, d := range descriptions {
		preferred, err := s.Suggest(ctx, userID, *d)
		if err != nil {
			slog.Warn("looking up description mapping", "user_id", userID, "description", *d, "error", err)
			continue
		}

		if preferred != "" && preferred != *d {
			*d = preferred
			rewritten++
		}
	}

	return rewritten
}
