package locale

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount as Brazilian reais, e.g. "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	value, _ := amount.Round(2).Float64()
	if value < 0 {
		return brPrinter.Sprintf("-R$ %.2f", -value)
	}
	return brPrinter.Sprintf("R$ %.2f", value)
}

// FormatNumber renders an amount with pt-BR separators and no currency symbol.
func FormatNumber(amount decimal.Decimal) string {
	value, _ := amount.Round(2).Float64()
	return brPrinter.Sprintf("%.2f", value)
}

// FormatDate turns an ISO date into DD/MM/YYYY.
func FormatDate(iso string) string {
	if iso == "" {
		return "Data inválida"
	}
	t, err := time.Parse(isoLayout, iso)
	if err != nil {
		return "Data inválida"
	}
	return t.Format("02/01/2006")
}

// FormatDateTime renders t as DD/MM/YYYY HH:MM in its own location. The zero time is blank.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}
