package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/djr-reciclagem/recebiveis/internal/masterdata"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the default companies, payment methods and bank accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := masterdata.NewService(masterdata.NewRepository(pool), shared.NewAuditLogger(pool), nil)
			created, err := svc.Seed(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed master data: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d entries added\n", created)
			return nil
		},
	}
}
