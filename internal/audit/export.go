package audit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"

	"github.com/djr-reciclagem/recebiveis/internal/locale"
)

var exportHeader = []string{"Data/Hora", "Usuário", "Ação", "Entidade", "ID", "Detalhes"}

// WriteCSV encodes rows with a header, semicolon separated so Excel in pt-BR opens it directly.
func WriteCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		actor := r.Actor
		if actor == "" {
			actor = "#" + strconv.FormatInt(r.ActorID, 10)
		}
		detail := ""
		if len(r.Meta) > 0 {
			data, err := json.Marshal(r.Meta)
			if err != nil {
				return nil, err
			}
			detail = string(data)
		}
		record := []string{
			locale.FormatDateTime(r.At),
			actor,
			r.ActionLabel(),
			r.Entity,
			r.EntityID,
			detail,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
