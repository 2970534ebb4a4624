package entry_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/auth"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
	entryhttp "github.com/MrJamesThe3rd/minhasfinancas/internal/http/entry"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/user"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	router  http.Handler
	entries *entry.MockRepository
	users   *user.MockRepository
	token   string
}

// newFixture authenticates requests as user 1.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	tokens := auth.NewTokenIssuer(testSecret, time.Hour)

	token, err := tokens.Issue(1)
	require.NoError(t, err)

	f := &fixture{
		entries: entry.NewMockRepository(ctrl),
		users:   user.NewMockRepository(ctrl),
		token:   token,
	}

	h := entryhttp.NewHandler(entry.NewService(f.entries), user.NewService(f.users, nil))

	r := chi.NewRouter()
	r.Route("/api/lancamentos", func(r chi.Router) {
		r.Use(auth.Middleware(tokens))
		h.Routes(r)
	})

	f.router = r

	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec, rec.Body.Bytes()
}

func errorOf(t *testing.T, body []byte) string {
	t.Helper()

	var got map[string]string
	require.NoError(t, json.Unmarshal(body, &got))

	return got["error"]
}

func stored(id int64) *entry.Entry {
	return &entry.Entry{
		ID:           id,
		Description:  "Salário",
		Month:        1,
		Year:         2019,
		Value:        decimal.NewFromInt(1500),
		Type:         entry.TypeIncome,
		Status:       entry.StatusPending,
		UserID:       1,
		RegisteredAt: time.Date(2019, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(f *fixture)
		wantStatus int
		wantErr    string
	}{
		{
			name: "Created",
			body: `{"descricao":"Salário","mes":1,"ano":2019,"valor":1500,"usuario":1,"tipo":"RECEITA","status":"EFETIVADO"}`,
			setupMock: func(f *fixture) {
				f.users.EXPECT().GetByID(gomock.Any(), int64(1)).Return(&user.User{ID: 1}, nil)
				f.entries.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *entry.Entry) error {
					e.ID = 10
					return nil
				})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "UnknownUser",
			body: `{"descricao":"Salário","mes":1,"ano":2019,"valor":1500,"usuario":9,"tipo":"RECEITA"}`,
			setupMock: func(f *fixture) {
				f.users.EXPECT().GetByID(gomock.Any(), int64(9)).Return(nil, user.ErrIDNotFound)
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    "Usuário não encontrado para o Id informado.",
		},
		{
			name: "OtherUsersEntry",
			body: `{"descricao":"Salário","mes":1,"ano":2019,"valor":1500,"usuario":2,"tipo":"RECEITA"}`,
			setupMock: func(f *fixture) {
				f.users.EXPECT().GetByID(gomock.Any(), int64(2)).Return(&user.User{ID: 2}, nil)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "MissingUser",
			body:       `{"descricao":"Salário","mes":1,"ano":2019,"valor":1500,"tipo":"RECEITA"}`,
			setupMock:  func(*fixture) {},
			wantStatus: http.StatusBadRequest,
			wantErr:    "Informe um usuário.",
		},
		{
			name: "InvalidMonth",
			body: `{"descricao":"Salário","mes":13,"ano":2019,"valor":1500,"usuario":1,"tipo":"RECEITA"}`,
			setupMock: func(f *fixture) {
				f.users.EXPECT().GetByID(gomock.Any(), int64(1)).Return(&user.User{ID: 1}, nil)
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    "Informe um mês válido.",
		},
		{
			name: "UnknownType",
			body: `{"descricao":"Salário","mes":1,"ano":2019,"valor":1500,"usuario":1,"tipo":"TRANSFERENCIA"}`,
			setupMock: func(f *fixture) {
				f.users.EXPECT().GetByID(gomock.Any(), int64(1)).Return(&user.User{ID: 1}, nil)
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			rec, body := f.do(t, http.MethodPost, "/api/lancamentos/", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorOf(t, body))
			}

			if tt.wantStatus == http.StatusCreated {
				var got map[string]any
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "PENDENTE", got["status"])
				assert.Equal(t, "1500.00", got["valor"])
				assert.Equal(t, float64(10), got["id"])
			}
		})
	}
}

func TestHandler_Get(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		f := newFixture(t)
		f.entries.EXPECT().GetEntry(gomock.Any(), int64(3)).Return(stored(3), nil)

		rec, body := f.do(t, http.MethodGet, "/api/lancamentos/3", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(body), `"data_cadastro":"2019-01-10"`)
	})

	t.Run("Missing", func(t *testing.T) {
		f := newFixture(t)
		f.entries.EXPECT().GetEntry(gomock.Any(), int64(3)).Return(nil, entry.ErrNotFound)

		rec, body := f.do(t, http.MethodGet, "/api/lancamentos/3", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Lançamento não encontrado na base de dados.", errorOf(t, body))
	})

	t.Run("OtherOwner", func(t *testing.T) {
		f := newFixture(t)

		e := stored(3)
		e.UserID = 2
		f.entries.EXPECT().GetEntry(gomock.Any(), int64(3)).Return(e, nil)

		rec, _ := f.do(t, http.MethodGet, "/api/lancamentos/3", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("BadID", func(t *testing.T) {
		f := newFixture(t)

		rec, _ := f.do(t, http.MethodGet, "/api/lancamentos/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Update(t *testing.T) {
	t.Run("KeepsIDAndStatus", func(t *testing.T) {
		f := newFixture(t)

		existing := stored(3)
		existing.Status = entry.StatusConfirmed

		f.entries.EXPECT().GetEntry(gomock.Any(), int64(3)).Return(existing, nil)
		f.users.EXPECT().GetByID(gomock.Any(), int64(1)).Return(&user.User{ID: 1}, nil)
		f.entries.EXPECT().UpdateEntry(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *entry.Entry) error {
			assert.Equal(t, int64(3), e.ID)
			assert.Equal(t, entry.StatusConfirmed, e.Status)
			assert.Equal(t, "Salário de janeiro", e.Description)
			return nil
		})

		rec, _ := f.do(t, http.MethodPut, "/api/lancamentos/3",
			`{"descricao":"Salário de janeiro","mes":1,"ano":2019,"valor":"1500.00","usuario":1,"tipo":"RECEITA"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Missing", func(t *testing.T) {
		f := newFixture(t)
		f.entries.EXPECT().GetEntry(gomock.Any(), int64(3)).Return(nil, entry.ErrNotFound)

		rec, body := f.do(t, http.MethodPut, "/api/lancamentos/3", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Lançamento não encontrado na base de dados.", errorOf(t, body))
	})
}

func TestHandler_UpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantUpdate bool
	}{
		{name: "Canceled", body: `{"status":"CANCELADO"}`, wantStatus: http.StatusOK, wantUpdate: true},
		{name: "EnglishAlias", body: `{"status":"confirmed"}`, wantStatus: http.StatusOK, wantUpdate: true},
		{name: "Unknown", body: `{"status":"ARQUIVADO"}`, wantStatus: http.StatusBadRequest},
		{name: "Missing", body: `{}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.entries.EXPECT().GetEntry(gomock.Any(), int64(3)).Return(stored(3), nil)

			if tt.wantUpdate {
				f.entries.EXPECT().UpdateEntry(gomock.Any(), gomock.Any()).Return(nil)
			}

			rec, body := f.do(t, http.MethodPut, "/api/lancamentos/3/atualiza-status", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			if !tt.wantUpdate {
				assert.Equal(t, "Não foi possível atualizar o status do lançamento, envie um status válido.", errorOf(t, body))
			}
		})
	}
}

func TestHandler_Delete(t *testing.T) {
	t.Run("Deleted", func(t *testing.T) {
		f := newFixture(t)
		f.entries.EXPECT().GetEntry(gomock.Any(), int64(3)).Return(stored(3), nil)
		f.entries.EXPECT().DeleteEntry(gomock.Any(), int64(3)).Return(nil)

		rec, _ := f.do(t, http.MethodDelete, "/api/lancamentos/3", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Missing", func(t *testing.T) {
		f := newFixture(t)
		f.entries.EXPECT().GetEntry(gomock.Any(), int64(3)).Return(nil, entry.ErrNotFound)

		rec, _ := f.do(t, http.MethodDelete, "/api/lancamentos/3", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Search(t *testing.T) {
	t.Run("FiltersByQuery", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().GetByID(gomock.Any(), int64(1)).Return(&user.User{ID: 1}, nil)
		f.entries.EXPECT().SearchEntries(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter entry.Filter) ([]*entry.Entry, error) {
			require.NotNil(t, filter.UserID)
			assert.Equal(t, int64(1), *filter.UserID)
			require.NotNil(t, filter.Description)
			assert.Equal(t, "sal", *filter.Description)
			require.NotNil(t, filter.Month)
			assert.Equal(t, 1, *filter.Month)
			require.NotNil(t, filter.Type)
			assert.Equal(t, entry.TypeIncome, *filter.Type)
			assert.Nil(t, filter.Year)
			assert.Nil(t, filter.Status)

			return []*entry.Entry{stored(1)}, nil
		})

		rec, body := f.do(t, http.MethodGet, "/api/lancamentos/?usuario=1&descricao=sal&mes=1&tipo=receita", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got []map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Len(t, got, 1)
	})

	t.Run("EmptyIsArray", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().GetByID(gomock.Any(), int64(1)).Return(&user.User{ID: 1}, nil)
		f.entries.EXPECT().SearchEntries(gomock.Any(), gomock.Any()).Return(nil, nil)

		rec, body := f.do(t, http.MethodGet, "/api/lancamentos/?usuario=1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, string(body))
	})

	t.Run("UserRequired", func(t *testing.T) {
		f := newFixture(t)

		rec, _ := f.do(t, http.MethodGet, "/api/lancamentos/", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		f := newFixture(t)
		f.users.EXPECT().GetByID(gomock.Any(), int64(8)).Return(nil, user.ErrIDNotFound)

		rec, body := f.do(t, http.MethodGet, "/api/lancamentos/?usuario=8", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Não foi possível realizar a consulta. Usuário não encontrado para o id informado.", errorOf(t, body))
	})

	t.Run("OtherUser", func(t *testing.T) {
		f := newFixture(t)
		f.users.EXPECT().GetByID(gomock.Any(), int64(2)).Return(&user.User{ID: 2}, nil)

		rec, _ := f.do(t, http.MethodGet, "/api/lancamentos/?usuario=2", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("BadMonth", func(t *testing.T) {
		f := newFixture(t)

		rec, body := f.do(t, http.MethodGet, "/api/lancamentos/?usuario=1&mes=jan", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Parâmetro mes inválido.", errorOf(t, body))
	})
}
