package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/database"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, descricao, mes, ano, id_usuario, valor, tipo, status, data_cadastro
func scanEntry(s scanner) (*entry.Entry, error) {
	var e entry.Entry

	var typeStr, statusStr string

	if err := s.Scan(
		&e.ID, &e.Description, &e.Month, &e.Year, &e.UserID, &e.Value, &typeStr, &statusStr, &e.RegisteredAt,
	); err != nil {
		return nil, err
	}

	e.Type = entry.Type(typeStr)
	e.Status = entry.Status(statusStr)

	return &e, nil
}

const selectEntryColumns = `id, descricao, mes, ano, id_usuario, valor, tipo, status, data_cadastro`

const insertEntry = `
	INSERT INTO lancamentos (descricao, mes, ano, id_usuario, valor, tipo, status, data_cadastro)
	VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_DATE)
	RETURNING id, data_cadastro
`

func (s *Store) GetEntry(ctx context.Context, id int64) (*entry.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM lancamentos WHERE id = $1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entry.ErrNotFound
		}

		return nil, fmt.Errorf("getting entry: %w", err)
	}

	return e, nil
}

func (s *Store) CreateEntry(ctx context.Context, e *entry.Entry) error {
	err := s.db.QueryRowContext(ctx, insertEntry,
		e.Description,
		e.Month,
		e.Year,
		e.UserID,
		e.Value,
		e.Type,
		e.Status,
	).Scan(&e.ID, &e.RegisteredAt)
	if err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}

	return nil
}

func (s *Store) UpdateEntry(ctx context.Context, e *entry.Entry) error {
	query := `
		UPDATE lancamentos
		SET descricao = $1, mes = $2, ano = $3, id_usuario = $4, valor = $5, tipo = $6, status = $7
		WHERE id = $8
		RETURNING data_cadastro
	`

	err := s.db.QueryRowContext(ctx, query,
		e.Description,
		e.Month,
		e.Year,
		e.UserID,
		e.Value,
		e.Type,
		e.Status,
		e.ID,
	).Scan(&e.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry.ErrNotFound
		}

		return fmt.Errorf("updating entry: %w", err)
	}

	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lancamentos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	if n == 0 {
		return entry.ErrNotFound
	}

	return nil
}

func (s *Store) SearchEntries(ctx context.Context, filter entry.Filter) ([]*entry.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM lancamentos WHERE 1 = 1`

	var args []any

	argIdx := 1

	if filter.Description != nil {
		query += fmt.Sprintf(` AND descricao ILIKE '%%' || $%d || '%%' ESCAPE '\'`, argIdx)

		args = append(args, database.EscapeLike(*filter.Description))
		argIdx++
	}

	if filter.Month != nil {
		query += fmt.Sprintf(" AND mes = $%d", argIdx)

		args = append(args, *filter.Month)
		argIdx++
	}

	if filter.Year != nil {
		query += fmt.Sprintf(" AND ano = $%d", argIdx)

		args = append(args, *filter.Year)
		argIdx++
	}

	if filter.UserID != nil {
		query += fmt.Sprintf(" AND id_usuario = $%d", argIdx)

		args = append(args, *filter.UserID)
		argIdx++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND tipo = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
	}

	query += " ORDER BY ano, mes, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching entries: %w", err)
	}
	defer rows.Close()

	entries := []*entry.Entry{}

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry rows: %w", err)
	}

	return entries, nil
}

// SumByUserAndType returns an invalid NullDecimal when the user has no entries of type t.
func (s *Store) SumByUserAndType(ctx context.Context, userID int64, t entry.Type) (decimal.NullDecimal, error) {
	var sum decimal.NullDecimal

	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(valor) FROM lancamentos WHERE id_usuario = $1 AND tipo = $2`,
		userID, t,
	).Scan(&sum)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("summing entries: %w", err)
	}

	return sum, nil
}

type batchTx struct {
	tx *sql.Tx
}

func (s *Store) BeginBatch(ctx context.Context) (entry.BatchTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning batch tx: %w", err)
	}

	return &batchTx{tx: tx}, nil
}

func (b *batchTx) Commit() error { return b.tx.Commit() }

// Rollback is a no-op after a successful Commit.
func (b *batchTx) Rollback() error {
	if err := b.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (b *batchTx) CreateEntries(ctx context.Context, entries []*entry.Entry) error {
	stmt, err := b.tx.PrepareContext(ctx, insertEntry)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		err := stmt.QueryRowContext(ctx,
			e.Description,
			e.Month,
			e.Year,
			e.UserID,
			e.Value,
			e.Type,
			e.Status,
		).Scan(&e.ID, &e.RegisteredAt)
		if err != nil {
			return fmt.Errorf("creating entry: %w", err)
		}
	}

	return nil
}
