package masterdata

import (
	"context"
	"errors"

	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

// Defaults are the lists the business started with.
var Defaults = map[Kind][]string{
	KindCompanies: {"Klabin", "Jaepel", "Fernandez", "Vale Tambau"},
	KindPaymentMethods: {
		"Pix", "Depósito", "Transferência", "Boleto", "Dinheiro", "Cheque",
	},
	KindBankAccounts: {
		"Sicoob Aracoop - Ag. 4264 - C/C 66433-2",
		"Sicoob Aracredi - Ag. 3093 - C/C 6610-9",
	},
}

// Seed creates the default entries that are missing and returns how many were added.
// Running it twice is harmless.
func (s *Service) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, kind := range Kinds {
		for _, nome := range Defaults[kind] {
			_, err := s.Create(ctx, kind, nome)
			if errors.Is(err, shared.ErrDuplicate) {
				continue
			}
			if err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
