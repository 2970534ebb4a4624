package entry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/apperr"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    entry.Status
		wantErr bool
	}{
		{in: "PENDENTE", want: entry.StatusPending},
		{in: "efetivado", want: entry.StatusConfirmed},
		{in: " Cancelado ", want: entry.StatusCanceled},
		{in: "CONFIRMED", want: entry.StatusConfirmed},
		{in: "cancelled", want: entry.StatusCanceled},
		{in: "pending", want: entry.StatusPending},
		{in: "ARQUIVADO", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := entry.ParseStatus(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, entry.ErrInvalidStatus)
				assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
				assert.Equal(t, "Não foi possível atualizar o status do lançamento, envie um status válido.", err.Error())

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    entry.Type
		wantErr bool
	}{
		{in: "RECEITA", want: entry.TypeIncome},
		{in: "despesa", want: entry.TypeExpense},
		{in: "income", want: entry.TypeIncome},
		{in: "Expense", want: entry.TypeExpense},
		{in: "TRANSFERENCIA", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := entry.ParseType(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, entry.ErrInvalidType)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, entry.StatusCanceled.Valid())
	assert.False(t, entry.Status("pendente").Valid())
	assert.False(t, entry.Status("").Valid())
}
