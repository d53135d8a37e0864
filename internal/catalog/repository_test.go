package catalog_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fjod/go_checkout/internal/catalog"
	"github.com/fjod/go_checkout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *catalog.Repository {
	repo, err := catalog.NewRepository(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.RunMigrations())
	return repo
}

func TestSnapshot_Returns5AfterMigrations(t *testing.T) {
	repo := setupTestDB(t)

	c, err := repo.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())

	shirt, ok := c.Product("5")
	require.True(t, ok)
	require.Len(t, shirt.Variants, 2)
	assert.Equal(t, domain.ID("51"), shirt.Variants[0].ID)
	size, _ := shirt.Variants[0].Attributes.Get("size")
	assert.Equal(t, "M", size)
	assert.True(t, shirt.Variants[0].Price.IsNull())
}

func TestRunMigrations_Twice(t *testing.T) {
	repo := setupTestDB(t)
	assert.NoError(t, repo.RunMigrations())
}

func TestSnapshot_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Snapshot(ctx)
	assert.Error(t, err)
}

func TestGetProduct(t *testing.T) {
	repo := setupTestDB(t)

	p, err := repo.GetProduct(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Dried Mango 500g", p.Name)
	assert.Equal(t, 40, catalog.CoerceToNonNegativeInt(p.StockQuantity))

	_, err = repo.GetProduct(context.Background(), "999")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestUpsertProduct_ReplacesVariants(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	p := domain.Product{
		ID:            "42",
		Name:          "Widget",
		Price:         domain.RawNumber("100.00"),
		StockQuantity: domain.RawNumber("3"),
		Weight:        domain.RawNumber("1.5"),
		Variants: []domain.Variant{
			{ID: "1", StockQuantity: domain.RawNumber("2"), Attributes: domain.Attributes{{Name: "color", Value: "red"}, {Name: "size", Value: "S"}}},
			{ID: "2", Price: domain.RawNumber("bad")},
		},
	}
	require.NoError(t, repo.UpsertProduct(ctx, p))

	got, err := repo.GetProduct(ctx, "42")
	require.NoError(t, err)
	require.Len(t, got.Variants, 2)
	assert.Equal(t, domain.Attributes{{Name: "color", Value: "red"}, {Name: "size", Value: "S"}}, got.Variants[0].Attributes)
	assert.Nil(t, got.Variants[1].Attributes)
	raw, ok := got.Variants[1].Price.Raw()
	assert.True(t, ok)
	assert.Equal(t, "bad", raw, "malformed values are stored as-is")

	p.Name = "Widget v2"
	p.Variants = p.Variants[:1]
	require.NoError(t, repo.UpsertProduct(ctx, p))

	got, err = repo.GetProduct(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", got.Name)
	assert.Len(t, got.Variants, 1)
}

func TestDeleteProduct(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.DeleteProduct(ctx, "5"))
	_, err := repo.GetProduct(ctx, "5")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	assert.ErrorIs(t, repo.DeleteProduct(ctx, "5"), catalog.ErrProductNotFound)

	c, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())
}
