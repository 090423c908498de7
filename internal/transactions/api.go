package transactions

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/locale"
	"github.com/djr-reciclagem/recebiveis/internal/platform/httpx"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

// MountAPI registers the JSON endpoints.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/transactions", h.apiList)
	r.Get("/transactions/{id}", h.apiGet)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAdmin)
		r.Post("/transactions", h.apiCreate)
		r.Put("/transactions/{id}", h.apiUpdate)
		r.Delete("/transactions/{id}", h.apiDelete)
		r.Post("/transactions/{id}/payments", h.apiPay)
	})
}

type apiTransactionInput struct {
	OrderNumber    string          `json:"orderNumber"`
	SaleDate       string          `json:"saleDate"`
	Company        string          `json:"company"`
	Client         string          `json:"client"`
	SaleValue      decimal.Decimal `json:"saleValue"`
	InvoiceNumbers string          `json:"invoiceNumbers"`
	InvoiceTotal   decimal.Decimal `json:"invoiceTotal"`
	TotalReceived  decimal.Decimal `json:"totalReceived"`
	PaymentMethod  string          `json:"paymentMethod"`
	BankAccount    string          `json:"bankAccount"`
	Observations   string          `json:"observations"`
}

func (in apiTransactionInput) input() Input {
	return Input{
		OrderNumber:    in.OrderNumber,
		SaleDate:       locale.ParseDate(in.SaleDate),
		Company:        in.Company,
		Client:         in.Client,
		SaleValue:      in.SaleValue,
		InvoiceNumbers: in.InvoiceNumbers,
		InvoiceTotal:   in.InvoiceTotal,
		TotalReceived:  in.TotalReceived,
		PaymentMethod:  in.PaymentMethod,
		BankAccount:    in.BankAccount,
		Observations:   in.Observations,
	}
}

type apiPaymentInput struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	BankAccount   string          `json:"bankAccount"`
	Decision      string          `json:"decision"`
}

type apiPaymentResult struct {
	Phase       ledger.Phase       `json:"phase"`
	Pending     decimal.Decimal    `json:"pending"`
	Difference  decimal.Decimal    `json:"difference"`
	Transaction ledger.Transaction `json:"transaction"`
}

func (h *Handler) apiList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("api list transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ledger.FilterFromQuery(r.URL.Query()).Apply(list))
}

func (h *Handler) apiGet(w http.ResponseWriter, r *http.Request) {
	tx, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tx)
}

func (h *Handler) apiCreate(w http.ResponseWriter, r *http.Request) {
	var body apiTransactionInput
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "JSON inválido.")
		return
	}
	created, err := h.service.Create(r.Context(), body.input())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) apiUpdate(w http.ResponseWriter, r *http.Request) {
	var body apiTransactionInput
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "JSON inválido.")
		return
	}
	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), body.input())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) apiDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiPay answers 200 with phase partial_difference_detected when a decision is still needed.
func (h *Handler) apiPay(w http.ResponseWriter, r *http.Request) {
	var body apiPaymentInput
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "JSON inválido.")
		return
	}
	res, err := h.service.RecordPayment(r.Context(), chi.URLParam(r, "id"), ledger.Payment{
		Amount:        body.Amount,
		PaymentMethod: body.PaymentMethod,
		BankAccount:   body.BankAccount,
		Decision:      ledger.ParseDecision(body.Decision),
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrAmountExceedsPending):
			httpx.ProblemFields(w, http.StatusBadRequest, "Validation Failed", paymentMessage(err, res),
				map[string]string{"amount": paymentMessage(err, res)})
		case errors.Is(err, ErrNotReceivable):
			httpx.Problem(w, http.StatusConflict, "Conflict", paymentMessage(err, res))
		default:
			if !errors.Is(err, shared.ErrNotFound) {
				h.logger.Error("api payment", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, apiPaymentResult{
		Phase:       res.Phase,
		Pending:     res.Pending,
		Difference:  res.Difference,
		Transaction: res.Transaction,
	})
}
