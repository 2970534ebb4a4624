package export

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/apperr"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/export"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/respond"
)

type Exporter interface {
	Export(ctx context.Context, w io.Writer, filter entry.Filter) (int, error)
}

type Handler struct {
	exporter Exporter
}

func NewHandler(exporter Exporter) *Handler {
	return &Handler{exporter: exporter}
}

// Routes must be mounted behind the auth middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/exportar", h.download)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	current, ok := respond.CurrentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	if s := q.Get("usuario"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id != current {
			respond.Message(w, http.StatusForbidden, respond.MsgForbidden)
			return
		}
	}

	filter := entry.Filter{UserID: new(current)}

	year, err := optionalInt(q.Get("ano"), "ano")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	month, err := optionalInt(q.Get("mes"), "mes")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if year != 0 {
		filter.Year = new(year)
	}

	if month != 0 {
		filter.Month = new(month)
	}

	// Buffered: a failed export must still answer with a JSON error.
	var buf bytes.Buffer
	if _, err := h.exporter.Export(r.Context(), &buf, filter); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(current, year, month)+`"`)
	w.WriteHeader(http.StatusOK)

	_, _ = buf.WriteTo(w)
}

func optionalInt(s, name string) (int, error) {
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.InvalidArgument("Parâmetro " + name + " inválido.")
	}

	return n, nil
}
