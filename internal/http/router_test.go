package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/auth"
	apihttp "github.com/MrJamesThe3rd/minhasfinancas/internal/http"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/entry"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/export"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/importcsv"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/matching"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/user"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func newRouter(db apihttp.Pinger) http.Handler {
	return apihttp.New(apihttp.Handlers{
		Users:    user.NewHandler(nil, nil, nil),
		Entries:  entry.NewHandler(nil, nil),
		Import:   importcsv.NewHandler(nil),
		Export:   export.NewHandler(nil),
		Matching: matching.NewHandler(nil),
	}, auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour), []string{"http://localhost:3000"}, db)
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
	}{
		{name: "Up", wantStatus: http.StatusOK},
		{name: "DatabaseDown", pingErr: errors.New("refused"), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(fakePinger{err: tt.pingErr}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	router := newRouter(fakePinger{})

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/lancamentos/?usuario=1"},
		{http.MethodGet, "/api/lancamentos/1"},
		{http.MethodPost, "/api/lancamentos/importar"},
		{http.MethodGet, "/api/lancamentos/exportar"},
		{http.MethodGet, "/api/usuarios/1/saldo"},
		{http.MethodGet, "/api/mapeamentos/"},
		{http.MethodGet, "/api/mapeamentos/sugestao?descricao=x"},
		{http.MethodDelete, "/api/mapeamentos/1"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/lancamentos/1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)

	rec := httptest.NewRecorder()
	newRouter(fakePinger{}).ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}
