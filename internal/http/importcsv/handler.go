package importcsv

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/apperr"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/respond"
)

const (
	maxUploadSize   = 10 << 20
	msgFileRequired = "Envie o arquivo no campo file."
	msgInvalidForm  = "Formulário inválido."
)

type Importer interface {
	Preview(ctx context.Context, userID int64, r io.Reader) ([]*entry.Entry, error)
	Import(ctx context.Context, userID int64, r io.Reader) ([]*entry.Entry, error)
}

type Handler struct {
	importer Importer
}

func NewHandler(importer Importer) *Handler {
	return &Handler{importer: importer}
}

// Routes must be mounted behind the auth middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/importar", h.importCSV)
}

type entryResponse struct {
	ID        int64        `json:"id"`
	Descricao string       `json:"descricao"`
	Mes       int          `json:"mes"`
	Ano       int          `json:"ano"`
	Valor     string       `json:"valor"`
	Tipo      entry.Type   `json:"tipo"`
	Status    entry.Status `json:"status"`
}

type importResponse struct {
	Importados  int             `json:"importados"`
	Simulacao   bool            `json:"simulacao,omitempty"`
	Lancamentos []entryResponse `json:"lancamentos"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Message(w, http.StatusBadRequest, msgInvalidForm)
		return
	}

	if s := r.FormValue("usuario"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id != current {
			respond.Message(w, http.StatusForbidden, respond.MsgForbidden)
			return
		}
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Message(w, http.StatusBadRequest, msgFileRequired)
		return
	}
	defer file.Close()

	// simular=true parses and validates the file without storing it.
	dryRun, _ := strconv.ParseBool(r.FormValue("simular"))

	importFn, status := h.importer.Import, http.StatusCreated
	if dryRun {
		importFn, status = h.importer.Preview, http.StatusOK
	}

	created, err := importFn(r.Context(), current, file)
	if err != nil {
		var batchErr *entry.BatchError
		if errors.As(err, &batchErr) {
			respond.Error(w, r, apperr.Wrap(apperr.BusinessRule(batchErr.Error()), err))
			return
		}

		respond.Error(w, r, err)

		return
	}

	resp := importResponse{
		Importados:  len(created),
		Simulacao:   dryRun,
		Lancamentos: make([]entryResponse, 0, len(created)),
	}

	for _, e := range created {
		resp.Lancamentos = append(resp.Lancamentos, entryResponse{
			ID:        e.ID,
			Descricao: e.Description,
			Mes:       e.Month,
			Ano:       e.Year,
			Valor:     e.Value.StringFixed(2),
			Tipo:      e.Type,
			Status:    e.Status,
		})
	}

	respond.JSON(w, status, resp)
}
