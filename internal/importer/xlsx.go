package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ErrEmptyWorkbook is returned for workbooks without sheets.
var ErrEmptyWorkbook = errors.New("importer: workbook has no sheets")

var cellNoise = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// XLSXToText reads the first sheet as tab separated text, one line per row, so it can go
// through the regular CSV pipeline. Numeric cells are written with a decimal comma and date
// cells as DD/MM/YYYY, the forms the pt-BR parsers expect.
func XLSXToText(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("importer: open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", ErrEmptyWorkbook
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("importer: read sheet %q: %w", sheet, err)
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	var b strings.Builder
	for r, row := range rows {
		cells := make([]string, len(row))
		for c, raw := range row {
			cells[c] = cellNoise.Replace(cellText(f, sheet, c+1, r+1, raw, date1904))
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// cellText renders one raw cell value. Text cells pass through untouched.
func cellText(f *excelize.File, sheet string, col, row int, raw string, date1904 bool) string {
	if raw == "" {
		return raw
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return raw
	}
	if typ == excelize.CellTypeDate {
		// ISO 8601 text; the date part is enough for ParseDate.
		if len(raw) >= len("2006-01-02") {
			return raw[:len("2006-01-02")]
		}
		return raw
	}
	if typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset {
		return raw
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	if isDateCell(f, sheet, axis) {
		t, err := excelize.ExcelDateToTime(v, date1904)
		if err != nil {
			return raw
		}
		return t.Format("02/01/2006")
	}
	return strings.Replace(decimal.NewFromFloat(v).String(), ".", ",", 1)
}

var numFmtLiterals = regexp.MustCompile(`\[[^\]]*\]|"[^"]*"|\\.`)

func isDateCell(f *excelize.File, sheet, axis string) bool {
	id, err := f.GetCellStyle(sheet, axis)
	if err != nil || id == 0 {
		return false
	}
	style, err := f.GetStyle(id)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		code := strings.ToLower(numFmtLiterals.ReplaceAllString(*style.CustomNumFmt, ""))
		return strings.ContainsAny(code, "dy")
	}
	// Built-in date formats: 14-17 are dates, 22 is date and time.
	return (style.NumFmt >= 14 && style.NumFmt <= 17) || style.NumFmt == 22
}

// IsXLSX sniffs the zip signature and the file name.
func IsXLSX(name string, head []byte) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xlsx") && bytes.HasPrefix(head, []byte("PK\x03\x04"))
}

// TemplateCSV is the downloadable import template.
func TemplateCSV() []byte {
	var b bytes.Buffer
	b.WriteString(strings.Join(StandardHeader, ","))
	b.WriteString("\n")
	b.WriteString(`PED-001,15/01/2025,Klabin,DJR Reciclagem,"1.500,00",NF-123,"1.500,00","1.000,00",PIX,Itaú,Primeira parcela`)
	b.WriteString("\n")
	return b.Bytes()
}
