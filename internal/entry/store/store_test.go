package store_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry/store"
)

var entryColumns = []string{"id", "descricao", "mes", "ano", "id_usuario", "valor", "tipo", "status", "data_cadastro"}

func newMock(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return store.New(db), mock
}

func TestStore_GetEntry(t *testing.T) {
	s, mock := newMock(t)
	day := time.Date(2019, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM lancamentos WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(entryColumns).
			AddRow(1, "Salário", 1, 2019, 2, "1500.50", "RECEITA", "PENDENTE", day))

	got, err := s.GetEntry(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Salário", got.Description)
	assert.Equal(t, int64(2), got.UserID)
	assert.Equal(t, "1500.5", got.Value.String())
	assert.Equal(t, entry.TypeIncome, got.Type)
	assert.Equal(t, entry.StatusPending, got.Status)
	assert.Equal(t, day, got.RegisteredAt)
}

func TestStore_GetEntry_NotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM lancamentos WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(entryColumns))

	_, err := s.GetEntry(context.Background(), 9)
	assert.ErrorIs(t, err, entry.ErrNotFound)
}

func TestStore_CreateEntry(t *testing.T) {
	s, mock := newMock(t)
	day := time.Date(2019, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO lancamentos`)).
		WithArgs("Salário", 1, 2019, int64(2), sqlmock.AnyArg(), "RECEITA", "PENDENTE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data_cadastro"}).AddRow(10, day))

	e := &entry.Entry{
		Description: "Salário",
		Month:       1,
		Year:        2019,
		UserID:      2,
		Value:       decimal.NewFromInt(100),
		Type:        entry.TypeIncome,
		Status:      entry.StatusPending,
	}
	require.NoError(t, s.CreateEntry(context.Background(), e))

	assert.Equal(t, int64(10), e.ID)
	assert.Equal(t, day, e.RegisteredAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateEntry_NotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE lancamentos`)).
		WillReturnRows(sqlmock.NewRows([]string{"data_cadastro"}))

	err := s.UpdateEntry(context.Background(), &entry.Entry{ID: 5, Value: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, entry.ErrNotFound)
}

func TestStore_DeleteEntry(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "Deleted", affected: 1},
		{name: "Missing", affected: 0, wantErr: entry.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMock(t)

			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM lancamentos WHERE id = $1`)).
				WithArgs(int64(3)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := s.DeleteEntry(context.Background(), 3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestStore_SearchEntries(t *testing.T) {
	desc := "sal"
	wildcards := "50% a_b"
	month := 1
	userID := int64(2)
	status := entry.StatusConfirmed

	tests := []struct {
		name      string
		filter    entry.Filter
		wantQuery string
		wantArgs  []driver.Value
	}{
		{
			name:      "NoCriteria",
			filter:    entry.Filter{},
			wantQuery: `FROM lancamentos WHERE 1 = 1 ORDER BY`,
		},
		{
			name:      "UserOnly",
			filter:    entry.Filter{UserID: &userID},
			wantQuery: `WHERE 1 = 1 AND id_usuario = $1 ORDER BY`,
			wantArgs:  []driver.Value{int64(2)},
		},
		{
			name:      "DescriptionMonthUserStatus",
			filter:    entry.Filter{Description: &desc, Month: &month, UserID: &userID, Status: &status},
			wantQuery: `AND descricao ILIKE '%' || $1 || '%' ESCAPE '\' AND mes = $2 AND id_usuario = $3 AND status = $4`,
			wantArgs:  []driver.Value{"sal", 1, int64(2), "EFETIVADO"},
		},
		{
			name:      "DescriptionWildcardsMatchLiterally",
			filter:    entry.Filter{Description: &wildcards},
			wantQuery: `AND descricao ILIKE '%' || $1 || '%' ESCAPE '\' ORDER BY`,
			wantArgs:  []driver.Value{`50\% a\_b`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMock(t)

			q := mock.ExpectQuery(regexp.QuoteMeta(tt.wantQuery))
			if len(tt.wantArgs) > 0 {
				q = q.WithArgs(tt.wantArgs...)
			}

			q.WillReturnRows(sqlmock.NewRows(entryColumns))

			got, err := s.SearchEntries(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_SumByUserAndType(t *testing.T) {
	t.Run("Value", func(t *testing.T) {
		s, mock := newMock(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT SUM(valor) FROM lancamentos`)).
			WithArgs(int64(1), "RECEITA").
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("100.00"))

		got, err := s.SumByUserAndType(context.Background(), 1, entry.TypeIncome)
		require.NoError(t, err)
		assert.True(t, got.Valid)
		assert.True(t, decimal.NewFromInt(100).Equal(got.Decimal))
	})

	t.Run("NoRowsIsNull", func(t *testing.T) {
		s, mock := newMock(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT SUM(valor) FROM lancamentos`)).
			WithArgs(int64(1), "DESPESA").
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

		got, err := s.SumByUserAndType(context.Background(), 1, entry.TypeExpense)
		require.NoError(t, err)
		assert.False(t, got.Valid)
	})
}

func TestStore_Batch(t *testing.T) {
	t.Run("Commit", func(t *testing.T) {
		s, mock := newMock(t)

		mock.ExpectBegin()
		prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO lancamentos`))
		prep.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"id", "data_cadastro"}).AddRow(1, time.Now()))
		prep.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"id", "data_cadastro"}).AddRow(2, time.Now()))
		mock.ExpectCommit()

		btx, err := s.BeginBatch(context.Background())
		require.NoError(t, err)

		entries := []*entry.Entry{{Value: decimal.NewFromInt(1)}, {Value: decimal.NewFromInt(2)}}
		require.NoError(t, btx.CreateEntries(context.Background(), entries))
		require.NoError(t, btx.Commit())
		require.NoError(t, btx.Rollback())

		assert.Equal(t, int64(2), entries[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback", func(t *testing.T) {
		s, mock := newMock(t)

		mock.ExpectBegin()
		mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO lancamentos`)).
			ExpectQuery().WillReturnError(errors.New("check violation"))
		mock.ExpectRollback()

		btx, err := s.BeginBatch(context.Background())
		require.NoError(t, err)

		err = btx.CreateEntries(context.Background(), []*entry.Entry{{Value: decimal.NewFromInt(1)}})
		assert.Error(t, err)
		assert.NoError(t, btx.Rollback())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
