package masterdata

import "time"

// Kind selects one of the master-data tables. The value is also the table name.
type Kind string

const (
	KindCompanies      Kind = "empresas"
	KindBankAccounts   Kind = "contas_bancarias"
	KindPaymentMethods Kind = "formas_recebimento"
)

// Kinds lists every master-data table in display order.
var Kinds = []Kind{KindCompanies, KindBankAccounts, KindPaymentMethods}

// ParseKind validates a kind taken from a URL.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Label is the heading used on the settings page.
func (k Kind) Label() string {
	switch k {
	case KindCompanies:
		return "Empresas"
	case KindBankAccounts:
		return "Contas bancárias"
	case KindPaymentMethods:
		return "Formas de recebimento"
	default:
		return string(k)
	}
}

// Item is a row of any master-data table.
type Item struct {
	ID        int64     `json:"id"`
	Nome      string    `json:"nome"`
	Ativo     bool      `json:"ativo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Catalog holds the three lists used to fill form selects.
type Catalog struct {
	Companies      []Item
	BankAccounts   []Item
	PaymentMethods []Item
}

// Names returns the item names in order.
func Names(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Nome)
	}
	return out
}

type itemInput struct {
	Nome string `validate:"required,max=120"`
}
