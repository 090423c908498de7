package importer

import (
	"bytes"
	"encoding/csv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode turns uploaded bytes into text. A UTF-8 BOM is dropped and input that is not valid
// UTF-8 is read as Windows-1252, the encoding Excel uses for CSV exports on Brazilian machines.
func Decode(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Line is a non-blank input line with its 1-based position in the original text.
type Line struct {
	Number int
	Text   string
}

// SplitLines breaks text on newlines, strips carriage returns and drops blank lines. When
// header is true the first non-blank line is skipped.
func SplitLines(text string, header bool) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		if header {
			header = false
			continue
		}
		lines = append(lines, Line{Number: i + 1, Text: l})
	}
	return lines
}

// Delimiter picks the separator for one line: tab, then semicolon, then comma.
func Delimiter(line string) rune {
	switch {
	case strings.ContainsRune(line, '\t'):
		return '\t'
	case strings.ContainsRune(line, ';'):
		return ';'
	default:
		return ','
	}
}

// SplitFields splits a line on its delimiter, unquoting quoted fields and trimming each one.
func SplitFields(line string) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = Delimiter(line)
	r.TrimLeadingSpace = r.Comma != '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	record, err := r.Read()
	if err != nil {
		record = strings.Split(line, string(Delimiter(line)))
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}
	return record
}
