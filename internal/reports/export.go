package reports

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/locale"
)

// Columns is the export header row.
var Columns = []string{
	"Pedido", "Data", "Empresa", "Cliente", "Valor Venda", "NF",
	"Total NF", "Recebido", "Forma Pgto", "Status", "Observações",
}

const sheetName = "Relatório"

// Filename names an export produced at now, e.g. relatorio-2025-01-31.csv.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("relatorio-%s.%s", now.Format("2006-01-02"), ext)
}

func exportRow(t ledger.Transaction) []string {
	return []string{
		t.OrderNumber,
		locale.FormatDate(t.SaleDate),
		t.Company,
		t.Client,
		t.SaleValue.StringFixed(2),
		t.InvoiceNumbers,
		t.InvoiceTotal.StringFixed(2),
		t.TotalReceived.StringFixed(2),
		t.PaymentMethod,
		string(t.Status),
		t.Observations,
	}
}

// WriteCSV writes list with every cell double-quoted and rows separated by \n.
func WriteCSV(w io.Writer, list []ledger.Transaction) error {
	bw := bufio.NewWriter(w)
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				_ = bw.WriteByte(',')
			}
			_ = bw.WriteByte('"')
			_, _ = bw.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			_ = bw.WriteByte('"')
		}
	}
	writeRow(Columns)
	for _, t := range list {
		_ = bw.WriteByte('\n')
		writeRow(exportRow(t))
	}
	return bw.Flush()
}

// WriteXLSX writes list as a single-sheet workbook. Amounts are stored as numbers.
func WriteXLSX(w io.Writer, list []ledger.Transaction) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", &Columns); err != nil {
		return err
	}
	for i, t := range list {
		row := []any{
			t.OrderNumber,
			locale.FormatDate(t.SaleDate),
			t.Company,
			t.Client,
			t.SaleValue.InexactFloat64(),
			t.InvoiceNumbers,
			t.InvoiceTotal.InexactFloat64(),
			t.TotalReceived.InexactFloat64(),
			t.PaymentMethod,
			t.Status.Label(),
			t.Observations,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}
