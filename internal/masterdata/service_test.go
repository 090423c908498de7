package masterdata

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[Kind][]Item
	err    error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[Kind][]Item{}}
}

func (m *memoryRepo) List(_ context.Context, kind Kind) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := append([]Item(nil), m.items[kind]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (m *memoryRepo) Create(_ context.Context, kind Kind, nome string) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items[kind] {
		if it.Nome == nome {
			return Item{}, shared.ErrDuplicate
		}
	}
	m.nextID++
	it := Item{ID: m.nextID, Nome: nome, Ativo: true}
	m.items[kind] = append(m.items[kind], it)
	return it, nil
}

func (m *memoryRepo) Update(_ context.Context, kind Kind, id int64, nome string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items[kind] {
		if it.ID == id {
			m.items[kind][i].Nome = nome
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memoryRepo) Delete(_ context.Context, kind Kind, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items[kind] {
		if it.ID == id {
			m.items[kind] = append(m.items[kind][:i], m.items[kind][i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

type auditSpy struct {
	entries []shared.AuditLog
}

func (a *auditSpy) Record(_ context.Context, log shared.AuditLog) error {
	a.entries = append(a.entries, log)
	return nil
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("contas_bancarias")
	assert.True(t, ok)
	assert.Equal(t, KindBankAccounts, k)
	assert.Equal(t, "Contas bancárias", k.Label())

	_, ok = ParseKind("users; DROP TABLE users")
	assert.False(t, ok)
}

func TestCreateTrimsAndRejectsDuplicates(t *testing.T) {
	audit := &auditSpy{}
	svc := NewService(newMemoryRepo(), audit, nil)
	ctx := context.Background()

	it, err := svc.Create(ctx, KindCompanies, "  Klabin  ")
	require.NoError(t, err)
	assert.Equal(t, "Klabin", it.Nome)
	assert.True(t, it.Ativo)

	_, err = svc.Create(ctx, KindCompanies, "Klabin")
	assert.ErrorIs(t, err, shared.ErrDuplicate)

	_, err = svc.Create(ctx, KindBankAccounts, "Klabin")
	assert.NoError(t, err, "names are unique per table only")

	require.Len(t, audit.entries, 2)
	assert.Equal(t, "masterdata.create", audit.entries[0].Action)
	assert.Equal(t, "empresas", audit.entries[0].Entity)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	_, err := svc.Create(context.Background(), KindPaymentMethods, "   ")
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Informe o nome.", verr.Fields["Nome"])
}

func TestUpdateAndDelete(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	it, err := svc.Create(ctx, KindPaymentMethods, "PIX")
	require.NoError(t, err)
	require.NoError(t, svc.Update(ctx, KindPaymentMethods, it.ID, "Pix"))

	items, err := svc.List(ctx, KindPaymentMethods)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pix"}, Names(items))

	require.NoError(t, svc.Delete(ctx, KindPaymentMethods, it.ID))
	assert.ErrorIs(t, svc.Delete(ctx, KindPaymentMethods, it.ID), shared.ErrNotFound)
	assert.ErrorIs(t, svc.Update(ctx, KindPaymentMethods, 0, "x"), shared.ErrNotFound)
}

func TestCatalogLoadsEveryKind(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	_, _ = svc.Create(ctx, KindCompanies, "Suzano")
	_, _ = svc.Create(ctx, KindCompanies, "Klabin")
	_, _ = svc.Create(ctx, KindBankAccounts, "Itaú 1234-5")
	_, _ = svc.Create(ctx, KindPaymentMethods, "Boleto")

	cat, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Klabin", "Suzano"}, Names(cat.Companies))
	assert.Equal(t, []string{"Itaú 1234-5"}, Names(cat.BankAccounts))
	assert.Equal(t, []string{"Boleto"}, Names(cat.PaymentMethods))

	repo.err = errors.New("db down")
	_, err = svc.Catalog(ctx)
	assert.Error(t, err)
}
