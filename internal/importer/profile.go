package importer

// amountMode determines how the value and type of an entry are read from a row.
type amountMode int

const (
	// amountTyped means an unsigned value column plus an explicit type column.
	amountTyped amountMode = iota
	// amountSigned means one signed column; negative values are expenses.
	amountSigned
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// Profile describes the column layout of a supported CSV file. Column names
// are compared after normalizing case and accents.
type Profile struct {
	Name       string
	DescCol    string
	MonthCol   string // with YearCol; used when DateCol is empty
	YearCol    string
	DateCol    string
	AmountMode amountMode
	AmountCol  string // amountTyped and amountSigned
	TypeCol    string // amountTyped
	DebitCol   string // amountSplit
	CreditCol  string // amountSplit
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DescCol}

	if p.DateCol != "" {
		cols = append(cols, p.DateCol)
	} else {
		cols = append(cols, p.MonthCol, p.YearCol)
	}

	switch p.AmountMode {
	case amountTyped:
		cols = append(cols, p.AmountCol, p.TypeCol)
	case amountSigned:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:       "lancamentos",
		DescCol:    "descricao",
		MonthCol:   "mes",
		YearCol:    "ano",
		AmountMode: amountTyped,
		AmountCol:  "valor",
		TypeCol:    "tipo",
	},
	{
		Name:       "cartao",
		DescCol:    "descricao",
		DateCol:    "data",
		AmountMode: amountSplit,
		DebitCol:   "debito",
		CreditCol:  "credito",
	},
	{
		Name:       "extrato",
		DescCol:    "historico",
		DateCol:    "data",
		AmountMode: amountSigned,
		AmountCol:  "valor",
	},
	{
		Name:       "extrato-descricao",
		DescCol:    "descricao",
		DateCol:    "data",
		AmountMode: amountSigned,
		AmountCol:  "valor",
	},
}
