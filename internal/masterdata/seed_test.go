package masterdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	_, err := repo.Create(context.Background(), KindCompanies, "Klabin")
	require.NoError(t, err)
	svc := NewService(repo, nil, nil)

	created, err := svc.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11, created)
	assert.Len(t, repo.items[KindCompanies], 4)
	assert.Len(t, repo.items[KindPaymentMethods], 6)
	assert.Len(t, repo.items[KindBankAccounts], 2)

	created, err = svc.Seed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, created)
}
