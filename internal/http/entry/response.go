package entry

import (
	"time"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
)

type entryResponse struct {
	ID           int64        `json:"id"`
	Descricao    string       `json:"descricao"`
	Mes          int          `json:"mes"`
	Ano          int          `json:"ano"`
	Valor        string       `json:"valor"`
	Usuario      int64        `json:"usuario"`
	Tipo         entry.Type   `json:"tipo"`
	Status       entry.Status `json:"status"`
	DataCadastro string       `json:"data_cadastro,omitempty"`
}

func toResponse(e *entry.Entry) entryResponse {
	resp := entryResponse{
		ID:        e.ID,
		Descricao: e.Description,
		Mes:       e.Month,
		Ano:       e.Year,
		Valor:     e.Value.StringFixed(2),
		Usuario:   e.UserID,
		Tipo:      e.Type,
		Status:    e.Status,
	}

	if !e.RegisteredAt.IsZero() {
		resp.DataCadastro = e.RegisteredAt.Format(time.DateOnly)
	}

	return resp
}

func toResponseList(entries []*entry.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toResponse(e)
	}

	return resp
}
