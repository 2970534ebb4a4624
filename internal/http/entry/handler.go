package entry

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/apperr"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/respond"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/user"
)

const (
	msgUserRequired = "Informe o usuário para a consulta."
	msgSearchNoUser = "Não foi possível realizar a consulta. Usuário não encontrado para o id informado."
)

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

type Handler struct {
	entries *entry.Service
	users   UserFinder
}

func NewHandler(entries *entry.Service, users UserFinder) *Handler {
	return &Handler{entries: entries, users: users}
}

// Routes must be mounted behind the auth middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.search)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Put("/{id}/atualiza-status", h.updateStatus)
	r.Delete("/{id}", h.delete)
}

type entryRequest struct {
	Descricao string          `json:"descricao" validate:"max=100"`
	Mes       int             `json:"mes"`
	Ano       int             `json:"ano"`
	Valor     decimal.Decimal `json:"valor"`
	Usuario   int64           `json:"usuario" validate:"gte=0"`
	Tipo      string          `json:"tipo"`
	Status    string          `json:"status"`
}

// toEntry resolves the owning user and the enum tokens of req. An absent user
// is left at zero for entry validation to report.
func (h *Handler) toEntry(ctx context.Context, current int64, req entryRequest) (*entry.Entry, error) {
	e := &entry.Entry{
		Description: req.Descricao,
		Month:       req.Mes,
		Year:        req.Ano,
		Value:       req.Valor,
	}

	if req.Usuario != 0 {
		u, err := h.users.FindByID(ctx, req.Usuario)
		if err != nil {
			if errors.Is(err, user.ErrIDNotFound) {
				return nil, apperr.Wrap(apperr.BusinessRule(apperr.Message(user.ErrIDNotFound)), err)
			}

			return nil, err
		}

		if u.ID != current {
			return nil, apperr.Forbidden(respond.MsgForbidden)
		}

		e.UserID = u.ID
	}

	if req.Tipo != "" {
		t, err := entry.ParseType(req.Tipo)
		if err != nil {
			return nil, err
		}

		e.Type = t
	}

	if req.Status != "" {
		s, err := entry.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}

		e.Status = s
	}

	return e, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	var req entryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.toEntry(r.Context(), current, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	created, err := h.entries.Create(r.Context(), e)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(created))
}

// owned loads the entry named by the {id} parameter and checks it belongs to
// current. Missing entries are reported with missingStatus.
func (h *Handler) owned(w http.ResponseWriter, r *http.Request, current int64, missingStatus int) (*entry.Entry, bool) {
	id, err := respond.IDParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	e, err := h.entries.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, entry.ErrNotFound) {
			respond.ErrorWithStatus(w, r, missingStatus, err)
			return nil, false
		}

		respond.Error(w, r, err)

		return nil, false
	}

	if e.UserID != current {
		respond.Message(w, http.StatusForbidden, respond.MsgForbidden)
		return nil, false
	}

	return e, true
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	e, ok := h.owned(w, r, current, http.StatusNotFound)
	if !ok {
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	existing, ok := h.owned(w, r, current, http.StatusBadRequest)
	if !ok {
		return
	}

	var req entryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.toEntry(r.Context(), current, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	e.ID = existing.ID
	e.RegisteredAt = existing.RegisteredAt

	if e.Status == "" {
		e.Status = existing.Status
	}

	updated, err := h.entries.Update(r.Context(), e)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(updated))
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	existing, ok := h.owned(w, r, current, http.StatusBadRequest)
	if !ok {
		return
	}

	var req statusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, apperr.Message(entry.ErrInvalidStatus))
		return
	}

	status, err := entry.ParseStatus(req.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	updated, err := h.entries.UpdateStatus(r.Context(), existing, status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	existing, ok := h.owned(w, r, current, http.StatusBadRequest)
	if !ok {
		return
	}

	if err := h.entries.Delete(r.Context(), existing); err != nil {
		if errors.Is(err, entry.ErrNotFound) {
			respond.ErrorWithStatus(w, r, http.StatusBadRequest, err)
			return
		}

		respond.Error(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if _, err := h.users.FindByID(r.Context(), *filter.UserID); err != nil {
		if errors.Is(err, user.ErrIDNotFound) {
			respond.Message(w, http.StatusBadRequest, msgSearchNoUser)
			return
		}

		respond.Error(w, r, err)

		return
	}

	if *filter.UserID != current {
		respond.Message(w, http.StatusForbidden, respond.MsgForbidden)
		return
	}

	entries, err := h.entries.Search(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(entries))
}

// parseFilter reads the search criteria from the query string. usuario is mandatory.
func parseFilter(r *http.Request) (entry.Filter, error) {
	q := r.URL.Query()

	var filter entry.Filter

	userStr := q.Get("usuario")
	if userStr == "" {
		return filter, apperr.InvalidArgument(msgUserRequired)
	}

	userID, err := strconv.ParseInt(userStr, 10, 64)
	if err != nil {
		return filter, invalidParam("usuario")
	}

	filter.UserID = new(userID)

	if s := q.Get("descricao"); s != "" {
		filter.Description = new(s)
	}

	if s := q.Get("mes"); s != "" {
		month, err := strconv.Atoi(s)
		if err != nil {
			return filter, invalidParam("mes")
		}

		filter.Month = new(month)
	}

	if s := q.Get("ano"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return filter, invalidParam("ano")
		}

		filter.Year = new(year)
	}

	if s := q.Get("tipo"); s != "" {
		t, err := entry.ParseType(s)
		if err != nil {
			return filter, err
		}

		filter.Type = new(t)
	}

	if s := q.Get("status"); s != "" {
		st, err := entry.ParseStatus(s)
		if err != nil {
			return filter, invalidParam("status")
		}

		filter.Status = new(st)
	}

	return filter, nil
}

func invalidParam(name string) error {
	return apperr.InvalidArgument("Parâmetro " + name + " inválido.")
}
