package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerbridge/faktura/internal/application/port"
	"github.com/ledgerbridge/faktura/internal/domain/entity"
)

func TestSellerProfileRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSellerProfileRepository(newTestDB(t), zap.NewNop())

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, port.ErrNotFound)

	profile := &entity.SellerProfile{
		Party: entity.Party{
			Name:        "Przykładowa Sp. z o.o.",
			NIP:         "629-237-08-46",
			Address:     "Dąbrowskiego 12",
			PostalCode:  "00-100",
			BankAccount: "PL61 1090 1014 0000 0712 1981 2874",
		},
		UpdatedAt: time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, profile))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, profile.Party, got.Party)

	profile.Name = "Nowa Nazwa Sp. z o.o."
	require.NoError(t, repo.Save(ctx, profile))
	got, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Nowa Nazwa Sp. z o.o.", got.Name)

	require.NoError(t, repo.Delete(ctx))
	_, err = repo.Get(ctx)
	assert.ErrorIs(t, err, port.ErrNotFound)
	assert.NoError(t, repo.Delete(ctx))
}
