package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/djr-reciclagem/recebiveis/internal/importer"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/transactions"
)

func importCmd() *cobra.Command {
	var (
		layout  string
		actorID int64
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a CSV, TSV or XLSX file into the ledger",
		Long: `Import a spreadsheet export straight into the ledger, bypassing the web upload
limits. Layouts: csv (the app template) or klabin (the customer statement).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := importer.ParseSource(layout)
			if err != nil {
				return err
			}
			text, err := readImportText(args[0])
			if err != nil {
				return err
			}
			total := importer.CountLines(text, src)
			if total == 0 {
				return fmt.Errorf("%s: no data lines", filepath.Base(args[0]))
			}

			pool, err := openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := transactions.NewService(transactions.NewRepository(pool), shared.NewAuditLogger(pool), nil, nil)
			im := importer.New(svc, nil, nil)

			bar := progressbar.NewOptions(total,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription(filepath.Base(args[0])),
				progressbar.OptionClearOnFinish(),
			)
			opts := importer.NewOptions(src)
			opts.OnRow = func(done, _ int, _ importer.Report) {
				_ = bar.Set(done)
			}

			ctx := shared.ContextWithPrincipal(cmd.Context(), &shared.Principal{ID: actorID, Role: shared.RoleAdmin})
			report, err := im.Run(ctx, text, opts)
			_ = bar.Finish()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Summary())
			for _, line := range report.Errors {
				fmt.Fprintln(out, "  "+line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&layout, "layout", string(importer.SourceCSV), "file layout: csv, paste or klabin")
	cmd.Flags().Int64Var(&actorID, "actor", 0, "user id recorded in the audit log")
	return cmd
}

// readImportText turns a file into the text the importer parses, unpacking workbooks first.
func readImportText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if importer.IsXLSX(path, raw) {
		return importer.XLSXToText(bytes.NewReader(raw))
	}
	return importer.Decode(raw)
}
