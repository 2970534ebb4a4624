package importer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/importer"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParser_Lancamentos(t *testing.T) {
	csv := `Descrição;Mês;Ano;Valor;Tipo
Salário;1;2019;1.500,00;RECEITA
Aluguel;1;2019;800,00;despesa

Mercado;2;2019;123.45;EXPENSE
`

	got, err := importer.NewParser().Parse(strings.NewReader(csv), 7)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Salário", got[0].Description)
	assert.Equal(t, 1, got[0].Month)
	assert.Equal(t, 2019, got[0].Year)
	assert.True(t, dec("1500").Equal(got[0].Value))
	assert.Equal(t, entry.TypeIncome, got[0].Type)
	assert.Equal(t, int64(7), got[0].UserID)

	assert.Equal(t, entry.TypeExpense, got[1].Type)
	assert.True(t, dec("123.45").Equal(got[2].Value))
	assert.Equal(t, entry.TypeExpense, got[2].Type)
}

func TestParser_LancamentosKeepsInvalidRowsForValidation(t *testing.T) {
	csv := "descricao;mes;ano;valor;tipo\nSem valor;3;2019;abc;TRANSFERENCIA\n"

	got, err := importer.NewParser().Parse(strings.NewReader(csv), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.True(t, got[0].Value.IsZero())
	assert.Empty(t, got[0].Type)
}

func TestParser_ExtratoSignedAmounts(t *testing.T) {
	csv := `Banco Exemplo - Extrato de conta corrente
Agência;0001

Data;Histórico;Valor
05/03/2019;PIX RECEBIDO FULANO;250,00
07/03/2019;PIX ENEL 0123;-180,35
Saldo;;69,65
`

	got, err := importer.NewParser().Parse(strings.NewReader(csv), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "PIX RECEBIDO FULANO", got[0].Description)
	assert.Equal(t, 3, got[0].Month)
	assert.Equal(t, 2019, got[0].Year)
	assert.Equal(t, entry.TypeIncome, got[0].Type)

	assert.True(t, dec("180.35").Equal(got[1].Value))
	assert.Equal(t, entry.TypeExpense, got[1].Type)
}

func TestParser_CartaoSplitColumns(t *testing.T) {
	csv := `Data,Descrição,Débito,Crédito
2019-04-02,Restaurante,"45,90",
2019-04-10,Estorno,,"12,00"
`

	got, err := importer.NewParser().Parse(strings.NewReader(csv), 3)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, entry.TypeExpense, got[0].Type)
	assert.True(t, dec("45.90").Equal(got[0].Value))
	assert.Equal(t, 4, got[0].Month)
	assert.Equal(t, entry.TypeIncome, got[1].Type)
}

func TestParser_Latin1(t *testing.T) {
	utf8 := "descricao;mes;ano;valor;tipo\nPensão;5;2019;300,00;DESPESA\n"

	latin1, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(utf8))
	require.NoError(t, err)

	got, err := importer.NewParser().Parse(bytes.NewReader(latin1), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pensão", got[0].Description)
}

func TestParser_UnknownFormat(t *testing.T) {
	_, err := importer.NewParser().Parse(strings.NewReader("a;b;c\n1;2;3\n"), 1)
	assert.ErrorIs(t, err, importer.ErrUnknownFormat)
}
