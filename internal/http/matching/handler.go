package matching

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/respond"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/matching"
)

const msgDescriptionRequired = "Informe o parâmetro descricao."

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes must be mounted behind the auth middleware; every mapping belongs to
// the token's user.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.learn)
	r.Get("/sugestao", h.suggest)
	r.Delete("/{id}", h.forget)
}

type mappingResponse struct {
	ID                 int64  `json:"id"`
	Padrao             string `json:"padrao"`
	DescricaoPreferida string `json:"descricao_preferida"`
	CriadoEm           string `json:"criado_em,omitempty"`
}

func toResponse(m *matching.Mapping) mappingResponse {
	resp := mappingResponse{ID: m.ID, Padrao: m.Pattern, DescricaoPreferida: m.Preferred}
	if !m.CreatedAt.IsZero() {
		resp.CriadoEm = m.CreatedAt.Format(time.RFC3339)
	}

	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	mappings, err := h.svc.List(r.Context(), current)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]mappingResponse, len(mappings))
	for i, m := range mappings {
		resp[i] = toResponse(m)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type suggestResponse struct {
	Descricao          string `json:"descricao"`
	DescricaoPreferida string `json:"descricao_preferida"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("descricao")
	if raw == "" {
		respond.Message(w, http.StatusBadRequest, msgDescriptionRequired)
		return
	}

	preferred, err := h.svc.Suggest(r.Context(), current, raw)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{Descricao: raw, DescricaoPreferida: preferred})
}

type learnRequest struct {
	Padrao             string `json:"padrao" validate:"max=150"`
	DescricaoPreferida string `json:"descricao_preferida" validate:"max=100"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	var req learnRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	m, err := h.svc.Learn(r.Context(), current, req.Padrao, req.DescricaoPreferida)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(m))
}

func (h *Handler) forget(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	id, err := respond.IDParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Forget(r.Context(), current, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
