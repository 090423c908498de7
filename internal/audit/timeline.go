package audit

import (
	"net/url"
	"strconv"
	"time"
)

// Filters narrows the activity log.
type Filters struct {
	From     time.Time
	To       time.Time
	Actor    string
	Entity   string
	Action   string
	Page     int
	PageSize int
}

// Query renders f back into the page URL parameters, without the page number.
func (f Filters) Query() url.Values {
	q := url.Values{}
	if !f.From.IsZero() {
		q.Set("from", f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		q.Set("to", f.To.Format(dateLayout))
	}
	if f.Actor != "" {
		q.Set("actor", f.Actor)
	}
	if f.Entity != "" {
		q.Set("entity", f.Entity)
	}
	if f.Action != "" {
		q.Set("action", f.Action)
	}
	if f.PageSize > 0 && f.PageSize != DefaultPageSize {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	return q
}

// Row is one audit entry with the actor resolved to an email.
type Row struct {
	At       time.Time      `json:"at"`
	ActorID  int64          `json:"actor_id"`
	Actor    string         `json:"actor"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entity_id"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// ActionLabel is the Portuguese name shown in the log.
func (r Row) ActionLabel() string {
	if label, ok := actionLabels[r.Action]; ok {
		return label
	}
	return r.Action
}

var actionLabels = map[string]string{
	"transaction.create":  "Lançamento criado",
	"transaction.update":  "Lançamento alterado",
	"transaction.delete":  "Lançamento excluído",
	"transaction.payment": "Recebimento registrado",
	"masterdata.create":   "Cadastro criado",
	"masterdata.update":   "Cadastro alterado",
	"masterdata.delete":   "Cadastro excluído",
}

// Paging carries simple previous/next navigation.
type Paging struct {
	Page     int
	PageSize int
	HasNext  bool
	PrevPage int
	NextPage int
}

// Result is one page of the log.
type Result struct {
	Rows   []Row
	Paging Paging
}
