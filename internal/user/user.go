package user

import (
	"time"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/apperr"
)

// User is an account that owns ledger entries.
type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string // bcrypt hash once stored
	CreatedAt time.Time
}

var (
	ErrNotFound           = apperr.NotFound("Usuário não encontrado para o email informado.")
	ErrIDNotFound         = apperr.NotFound("Usuário não encontrado para o Id informado.")
	ErrInvalidCredentials = apperr.InvalidCredentials("Senha inválida.")
	ErrEmailTaken         = apperr.BusinessRule("Já existe um usuário cadastrado com este email.")
)
