// Package respond writes JSON bodies and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/apperr"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/auth"
)

const (
	MsgInternal     = "erro interno"
	MsgInvalidBody  = "Corpo da requisição inválido."
	MsgInvalidID    = "Identificador inválido."
	MsgForbidden    = "Acesso negado a dados de outro usuário."
	MsgUnauthorized = "token de acesso ausente"
)

var validate = validator.New()

type errorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorResponse{Error: msg})
}

// Status maps an error kind to the status used by every handler that has no
// reason to deviate.
func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.KindBusinessRule, apperr.KindInvalidArgument, apperr.KindPrecondition:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidCredentials:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	}

	return http.StatusInternalServerError
}

// Error writes err with the status of its kind. Errors that carry no client
// message are logged and hidden behind a generic one.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	ErrorWithStatus(w, r, Status(apperr.KindOf(err)), err)
}

func ErrorWithStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := apperr.Message(err)
	if msg == "" || status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()))
		Message(w, http.StatusInternalServerError, MsgInternal)

		return
	}

	slog.Debug("request rejected", "status", status, "error", err, "path", r.URL.Path)
	Message(w, status, msg)
}

// Decode reads a JSON body into v and runs its `validate` struct tags.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.InvalidArgument(MsgInvalidBody), err)
	}

	if err := validate.Struct(v); err != nil {
		return apperr.Wrap(apperr.InvalidArgument(validationMessage(err)), err)
	}

	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return MsgInvalidBody
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}

	return fmt.Sprintf("Campos inválidos: %s.", strings.Join(fields, ", "))
}

// IDParam parses the {id} URL parameter.
func IDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidArgument(MsgInvalidID)
	}

	return id, nil
}

// CurrentUser returns the authenticated user ID, writing 401 when there is none.
func CurrentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		Message(w, http.StatusUnauthorized, MsgUnauthorized)
		return 0, false
	}

	return id, true
}
