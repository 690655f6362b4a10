package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shelfsync/backend/internal/domain/connection"
	"github.com/shelfsync/backend/internal/infrastructure/persistence/models"
)

func setupConnectionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ShopConnectionModel{})
	require.NoError(t, err)

	return db
}

func TestConnectionRepository_SaveAndFind(t *testing.T) {
	db := setupConnectionTestDB(t)
	repo := NewGormConnectionRepository(db)
	ctx := context.Background()

	t.Run("saves and finds by shop domain", func(t *testing.T) {
		conn, err := connection.NewConnection("demo.myshopify.com", "shpat_abc", "read_products")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, conn))

		found, err := repo.FindByShopDomain(ctx, "demo.myshopify.com")
		require.NoError(t, err)
		assert.Equal(t, conn.ID, found.ID)
		assert.Equal(t, "shpat_abc", found.AccessToken)
		assert.Equal(t, "read_products", found.Scope)
	})

	t.Run("lookup is case insensitive on domain", func(t *testing.T) {
		found, err := repo.FindByShopDomain(ctx, "DEMO.myshopify.com")
		require.NoError(t, err)
		assert.Equal(t, "demo.myshopify.com", found.ShopDomain)
	})

	t.Run("unknown shop returns not found", func(t *testing.T) {
		_, err := repo.FindByShopDomain(ctx, "missing.myshopify.com")
		assert.ErrorIs(t, err, connection.ErrConnectionNotFound)
	})

	t.Run("save replaces the stored credential", func(t *testing.T) {
		found, err := repo.FindByShopDomain(ctx, "demo.myshopify.com")
		require.NoError(t, err)

		require.NoError(t, found.ReplaceToken("shpat_new", "read_products,write_products"))
		require.NoError(t, repo.Save(ctx, found))

		reloaded, err := repo.FindByShopDomain(ctx, "demo.myshopify.com")
		require.NoError(t, err)
		assert.Equal(t, "shpat_new", reloaded.AccessToken)
	})
}

func TestConnectionRepository_FindAll(t *testing.T) {
	db := setupConnectionTestDB(t)
	repo := NewGormConnectionRepository(db)
	ctx := context.Background()

	conns, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, conns)

	for _, domain := range []string{"a.myshopify.com", "b.myshopify.com"} {
		conn, err := connection.NewConnection(domain, "shpat_x", "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, conn))
	}

	conns, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Equal(t, "a.myshopify.com", conns[0].ShopDomain)
	assert.Equal(t, "b.myshopify.com", conns[1].ShopDomain)
}

func TestConnectionRepository_Delete(t *testing.T) {
	db := setupConnectionTestDB(t)
	repo := NewGormConnectionRepository(db)
	ctx := context.Background()

	conn, err := connection.NewConnection("demo.myshopify.com", "shpat_abc", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, conn))

	require.NoError(t, repo.Delete(ctx, "demo.myshopify.com"))

	_, err = repo.FindByShopDomain(ctx, "demo.myshopify.com")
	assert.ErrorIs(t, err, connection.ErrConnectionNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "demo.myshopify.com"), connection.ErrConnectionNotFound)
}
