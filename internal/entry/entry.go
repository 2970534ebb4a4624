package entry

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/apperr"
)

// Type tells whether an entry adds to or subtracts from the balance.
type Type string

const (
	TypeIncome  Type = "RECEITA"
	TypeExpense Type = "DESPESA"
)

// Status represents the lifecycle state of an entry. Any status may follow any other.
type Status string

const (
	StatusPending   Status = "PENDENTE"
	StatusConfirmed Status = "EFETIVADO"
	StatusCanceled  Status = "CANCELADO"
)

// MaxDescriptionLength is the longest description, in characters, the store accepts.
const MaxDescriptionLength = 100

// Entry is a single income or expense record owned by a user.
// Zero values mean the field was not supplied.
type Entry struct {
	ID           int64
	Description  string
	Month        int
	Year         int
	Value        decimal.Decimal
	Type         Type
	Status       Status
	UserID       int64
	RegisteredAt time.Time
}

var (
	ErrNotFound      = apperr.NotFound("Lançamento não encontrado na base de dados.")
	ErrInvalidStatus = apperr.InvalidArgument("Não foi possível atualizar o status do lançamento, envie um status válido.")
	ErrInvalidType   = apperr.InvalidArgument("Tipo de lançamento inválido.")
	ErrMissingID     = apperr.Precondition("Lançamento sem identificador.")

	ErrInvalidDescription = apperr.BusinessRule("Informe uma descrição válida.")
	ErrInvalidMonth       = apperr.BusinessRule("Informe um mês válido.")
	ErrMissingUser        = apperr.BusinessRule("Informe um usuário.")
	ErrInvalidValue       = apperr.BusinessRule("Informe um valor válido.")
	ErrMissingType        = apperr.BusinessRule("Informe um tipo de lançamento.")
)

var typeTokens = map[string]Type{
	"RECEITA": TypeIncome,
	"INCOME":  TypeIncome,
	"DESPESA": TypeExpense,
	"EXPENSE": TypeExpense,
}

var statusTokens = map[string]Status{
	"PENDENTE":  StatusPending,
	"PENDING":   StatusPending,
	"EFETIVADO": StatusConfirmed,
	"CONFIRMED": StatusConfirmed,
	"CANCELADO": StatusCanceled,
	"CANCELED":  StatusCanceled,
	"CANCELLED": StatusCanceled,
}

// ParseType maps a case-insensitive token, Portuguese or English, to a Type.
func ParseType(s string) (Type, error) {
	t, ok := typeTokens[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", ErrInvalidType
	}

	return t, nil
}

// ParseStatus maps a case-insensitive token, Portuguese or English, to a Status.
func ParseStatus(s string) (Status, error) {
	st, ok := statusTokens[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", ErrInvalidStatus
	}

	return st, nil
}

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCanceled:
		return true
	}

	return false
}
