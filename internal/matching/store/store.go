package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// likePattern quotes the wildcards of a stored pattern so it matches literally.
const likePattern = `'%' || REPLACE(REPLACE(REPLACE(padrao, '\', '\\'), '%', '\%'), '_', '\_') || '%'`

// FindMatch prefers the longest pattern, then the most recent one.
func (s *Store) FindMatch(ctx context.Context, userID int64, rawDescription string) (string, error) {
	query := `
		SELECT descricao_preferida
		FROM mapeamentos_descricao
		WHERE id_usuario = $1 AND $2 ILIKE ` + likePattern + ` ESCAPE '\'
		ORDER BY LENGTH(padrao) DESC, created_at DESC
		LIMIT 1
	`

	var preferred string

	err := s.db.QueryRowContext(ctx, query, userID, rawDescription).Scan(&preferred)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("finding mapping: %w", err)
	}

	return preferred, nil
}

func (s *Store) SaveMapping(ctx context.Context, m *matching.Mapping) error {
	query := `
		INSERT INTO mapeamentos_descricao (id_usuario, padrao, descricao_preferida)
		VALUES ($1, $2, $3)
		ON CONFLICT (id_usuario, padrao) DO UPDATE SET descricao_preferida = EXCLUDED.descricao_preferida
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, m.UserID, m.Pattern, m.Preferred).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving mapping: %w", err)
	}

	return nil
}

func (s *Store) ListMappings(ctx context.Context, userID int64) ([]*matching.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, id_usuario, padrao, descricao_preferida, created_at
		FROM mapeamentos_descricao
		WHERE id_usuario = $1
		ORDER BY padrao`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	mappings := []*matching.Mapping{}

	for rows.Next() {
		var m matching.Mapping
		if err := rows.Scan(&m.ID, &m.UserID, &m.Pattern, &m.Preferred, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}

		mappings = append(mappings, &m)
	}

	return mappings, rows.Err()
}

func (s *Store) DeleteMapping(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM mapeamentos_descricao WHERE id = $1 AND id_usuario = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}

	if n == 0 {
		return matching.ErrNotFound
	}

	return nil
}
