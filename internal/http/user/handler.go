package user

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/apperr"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/respond"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/user"
)

type BalanceReader interface {
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

type Handler struct {
	users    *user.Service
	balances BalanceReader
	tokens   TokenIssuer
}

func NewHandler(users *user.Service, balances BalanceReader, tokens TokenIssuer) *Handler {
	return &Handler{users: users, balances: balances, tokens: tokens}
}

// PublicRoutes are reachable without a token.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/", h.register)
	r.Post("/autenticar", h.authenticate)
}

// Routes must be mounted behind the auth middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}/saldo", h.balance)
}

type registerRequest struct {
	Nome  string `json:"nome" validate:"required,max=150"`
	Email string `json:"email" validate:"required,email,max=150"`
	Senha string `json:"senha" validate:"required"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), user.RegisterParams{
		Name:     req.Nome,
		Email:    req.Email,
		Password: req.Senha,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, userResponse{ID: u.ID, Nome: u.Name, Email: u.Email})
}

type authenticateRequest struct {
	Email string `json:"email" validate:"required"`
	Senha string `json:"senha" validate:"required"`
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Senha)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindNotFound, apperr.KindInvalidCredentials:
			respond.ErrorWithStatus(w, r, http.StatusUnauthorized, err)
		default:
			respond.Error(w, r, err)
		}

		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, userResponse{ID: u.ID, Nome: u.Name, Email: u.Email, Token: token})
}

type balanceResponse struct {
	Usuario int64  `json:"usuario"`
	Saldo   string `json:"saldo"`
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	id, err := respond.IDParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if id != current {
		respond.Message(w, http.StatusForbidden, respond.MsgForbidden)
		return
	}

	if _, err := h.users.FindByID(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	balance, err := h.balances.Balance(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, balanceResponse{Usuario: id, Saldo: balance.StringFixed(2)})
}
