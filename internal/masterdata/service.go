package masterdata

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service applies validation on top of the repository.
type Service struct {
	repo     Repository
	audit    AuditRecorder
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService creates a master-data service. audit may be nil.
func NewService(repo Repository, audit AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, validate: validator.New()}
}

// List returns the items of kind.
func (s *Service) List(ctx context.Context, kind Kind) ([]Item, error) {
	return s.repo.List(ctx, kind)
}

// Catalog loads all three lists concurrently.
func (s *Service) Catalog(ctx context.Context) (Catalog, error) {
	var cat Catalog
	g, ctx := errgroup.WithContext(ctx)
	targets := map[Kind]*[]Item{
		KindCompanies:      &cat.Companies,
		KindBankAccounts:   &cat.BankAccounts,
		KindPaymentMethods: &cat.PaymentMethods,
	}
	for kind, dst := range targets {
		g.Go(func() error {
			items, err := s.repo.List(ctx, kind)
			if err != nil {
				return err
			}
			*dst = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

func (s *Service) checkName(nome string) (string, error) {
	in := itemInput{Nome: strings.TrimSpace(nome)}
	if err := s.validate.Struct(in); err != nil {
		if in.Nome == "" {
			return "", shared.NewValidationError("Nome", "Informe o nome.")
		}
		return "", shared.NewValidationError("Nome", "Nome muito longo.")
	}
	return in.Nome, nil
}

// Create adds an item. Duplicate names fail with shared.ErrDuplicate.
func (s *Service) Create(ctx context.Context, kind Kind, nome string) (Item, error) {
	nome, err := s.checkName(nome)
	if err != nil {
		return Item{}, err
	}
	it, err := s.repo.Create(ctx, kind, nome)
	if err != nil {
		return Item{}, err
	}
	s.record(ctx, "masterdata.create", kind, it.ID, nome)
	return it, nil
}

// Update renames an item.
func (s *Service) Update(ctx context.Context, kind Kind, id int64, nome string) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	nome, err := s.checkName(nome)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, kind, id, nome); err != nil {
		return err
	}
	s.record(ctx, "masterdata.update", kind, id, nome)
	return nil
}

// Delete removes an item. Transactions keep the text they were saved with.
func (s *Service) Delete(ctx context.Context, kind Kind, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.record(ctx, "masterdata.delete", kind, id, "")
	return nil
}

func (s *Service) record(ctx context.Context, action string, kind Kind, id int64, nome string) {
	if s.audit == nil {
		return
	}
	meta := map[string]any{}
	if nome != "" {
		meta["nome"] = nome
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   action,
		Entity:   string(kind),
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
