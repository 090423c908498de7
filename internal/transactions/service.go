package transactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

// ErrNotReceivable is returned when a payment targets a transaction that is neither pending nor partial.
var ErrNotReceivable = errors.New("transactions: transaction is not awaiting payment")

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// PaymentObserver counts recorded payments.
type PaymentObserver interface {
	ObservePayment(phase string)
}

// Input is the editable part of a transaction as submitted by forms and imports.
type Input struct {
	OrderNumber    string `validate:"max=100"`
	SaleDate       string `validate:"required,datetime=2006-01-02"`
	Company        string `validate:"max=200"`
	Client         string `validate:"max=200"`
	SaleValue      decimal.Decimal
	InvoiceNumbers string `validate:"max=500"`
	InvoiceTotal   decimal.Decimal
	TotalReceived  decimal.Decimal
	PaymentMethod  string `validate:"max=100"`
	BankAccount    string `validate:"max=100"`
	Observations   string `validate:"max=2000"`
}

// FromTransaction extracts the editable fields of t.
func FromTransaction(t ledger.Transaction) Input {
	return Input{
		OrderNumber:    t.OrderNumber,
		SaleDate:       t.SaleDate,
		Company:        t.Company,
		Client:         t.Client,
		SaleValue:      t.SaleValue,
		InvoiceNumbers: t.InvoiceNumbers,
		InvoiceTotal:   t.InvoiceTotal,
		TotalReceived:  t.TotalReceived,
		PaymentMethod:  t.PaymentMethod,
		BankAccount:    t.BankAccount,
		Observations:   t.Observations,
	}
}

var fieldMessages = map[string]string{
	"SaleDate":       "Informe uma data de venda válida.",
	"OrderNumber":    "Número do pedido muito longo.",
	"Company":        "Nome da empresa muito longo.",
	"Client":         "Nome do cliente muito longo.",
	"InvoiceNumbers": "Lista de notas fiscais muito longa.",
	"PaymentMethod":  "Forma de recebimento muito longa.",
	"BankAccount":    "Banco/conta muito longo.",
	"Observations":   "Observações muito longas.",
}

// BulkDeleteResult summarises a bulk delete.
type BulkDeleteResult struct {
	Deleted int
	Failed  int
}

// Service implements the transaction ledger operations.
type Service struct {
	repo     Repository
	audit    AuditRecorder
	payments PaymentObserver
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService builds a Service. audit and payments may be nil.
func NewService(repo Repository, audit AuditRecorder, payments PaymentObserver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, payments: payments, logger: logger, validate: validator.New()}
}

func (s *Service) check(in *Input) error {
	in.OrderNumber = strings.TrimSpace(in.OrderNumber)
	in.SaleDate = strings.TrimSpace(in.SaleDate)
	in.Company = strings.TrimSpace(in.Company)
	in.Client = strings.TrimSpace(in.Client)
	in.InvoiceNumbers = strings.TrimSpace(in.InvoiceNumbers)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	in.BankAccount = strings.TrimSpace(in.BankAccount)
	in.Observations = strings.TrimSpace(in.Observations)

	verr := &shared.ValidationError{}
	if err := s.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fieldMessages[fe.Field()])
		}
	}
	if in.SaleValue.IsNegative() {
		verr.Add("SaleValue", "O valor vendido não pode ser negativo.")
	}
	if in.InvoiceTotal.IsNegative() {
		verr.Add("InvoiceTotal", "O total das notas não pode ser negativo.")
	}
	if in.TotalReceived.IsNegative() {
		verr.Add("TotalReceived", "O total recebido não pode ser negativo.")
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

// List returns every transaction, newest sale first.
func (s *Service) List(ctx context.Context) ([]ledger.Transaction, error) {
	return s.repo.List(ctx)
}

// Get loads a single transaction.
func (s *Service) Get(ctx context.Context, id string) (ledger.Transaction, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a manually entered transaction using the strict-equal status policy.
func (s *Service) Create(ctx context.Context, in Input) (ledger.Transaction, error) {
	return s.CreateWith(ctx, in, ledger.PolicyStrictEqual)
}

// CreateWith stores a transaction classified with policy. Discount always starts at zero.
func (s *Service) CreateWith(ctx context.Context, in Input, policy ledger.Policy) (ledger.Transaction, error) {
	if err := s.check(&in); err != nil {
		return ledger.Transaction{}, err
	}
	tx := ledger.Transaction{
		OrderNumber:    in.OrderNumber,
		SaleDate:       in.SaleDate,
		Company:        in.Company,
		Client:         in.Client,
		SaleValue:      in.SaleValue,
		InvoiceNumbers: in.InvoiceNumbers,
		InvoiceTotal:   in.InvoiceTotal,
		TotalReceived:  in.TotalReceived,
		Discount:       decimal.Zero,
		PaymentMethod:  in.PaymentMethod,
		BankAccount:    in.BankAccount,
		Observations:   in.Observations,
		Status:         ledger.ClassifyWith(policy, in.SaleValue, in.TotalReceived),
	}
	created, err := s.repo.Create(ctx, tx)
	if err != nil {
		return ledger.Transaction{}, err
	}
	s.record(ctx, "transaction.create", created.ID, map[string]any{"status": created.Status, "policy": policy.String()})
	return created, nil
}

// Update replaces the editable fields of a transaction. The stored discount is kept and the
// status is recomputed.
func (s *Service) Update(ctx context.Context, id string, in Input) (ledger.Transaction, error) {
	if err := s.check(&in); err != nil {
		return ledger.Transaction{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return ledger.Transaction{}, err
	}
	current.OrderNumber = in.OrderNumber
	current.SaleDate = in.SaleDate
	current.Company = in.Company
	current.Client = in.Client
	current.SaleValue = in.SaleValue
	current.InvoiceNumbers = in.InvoiceNumbers
	current.InvoiceTotal = in.InvoiceTotal
	current.TotalReceived = in.TotalReceived
	current.PaymentMethod = in.PaymentMethod
	current.BankAccount = in.BankAccount
	current.Observations = in.Observations
	current.Reclassify()

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return ledger.Transaction{}, err
	}
	s.record(ctx, "transaction.update", updated.ID, map[string]any{"status": updated.Status})
	return updated, nil
}

// Delete removes a transaction.
func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrNotFound
	}
	s.record(ctx, "transaction.delete", id, nil)
	return nil
}

// BulkDelete deletes ids one by one. A failure does not stop the remaining deletes and
// nothing is rolled back.
func (s *Service) BulkDelete(ctx context.Context, ids []string) BulkDeleteResult {
	var res BulkDeleteResult
	for _, id := range ids {
		if ctx.Err() != nil {
			res.Failed++
			continue
		}
		if err := s.Delete(ctx, id); err != nil {
			s.logger.Warn("bulk delete row failed", slog.String("id", id), slog.Any("error", err))
			res.Failed++
			continue
		}
		res.Deleted++
	}
	return res
}

// RecordPayment applies a payment to a pending or partial transaction and persists the result
// once it is settled or the user has decided what to do with the difference.
func (s *Service) RecordPayment(ctx context.Context, id string, p ledger.Payment) (ledger.Result, error) {
	tx, err := s.repo.Get(ctx, id)
	if err != nil {
		return ledger.Result{}, err
	}
	if !tx.Status.Receivable() {
		return ledger.Result{Transaction: tx, Phase: ledger.PhaseAwaitingAmount}, ErrNotReceivable
	}
	res, err := ledger.RecordPayment(tx, p)
	if err != nil {
		return res, err
	}
	if s.payments != nil {
		s.payments.ObservePayment(string(res.Phase))
	}
	if !res.Persist() {
		return res, nil
	}
	updated, err := s.repo.Update(ctx, res.Transaction)
	if err != nil {
		return res, fmt.Errorf("transactions: persist payment: %w", err)
	}
	res.Transaction = updated
	s.record(ctx, "transaction.payment", updated.ID, map[string]any{
		"amount":   p.Amount.String(),
		"decision": string(p.Decision),
		"phase":    string(res.Phase),
		"discount": updated.Discount.String(),
	})
	return res, nil
}

func (s *Service) record(ctx context.Context, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   action,
		Entity:   "transaction",
		EntityID: id,
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
