package persistence

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shelfsync/backend/internal/domain/connection"
	"github.com/shelfsync/backend/internal/infrastructure/persistence/models"
)

// GormConnectionRepository implements connection.Repository using GORM
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GormConnectionRepository
func NewGormConnectionRepository(db *gorm.DB) *GormConnectionRepository {
	return &GormConnectionRepository{db: db}
}

// FindByShopDomain finds a connection by its shop domain
func (r *GormConnectionRepository) FindByShopDomain(ctx context.Context, shopDomain string) (*connection.Connection, error) {
	var model models.ShopConnectionModel
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ?", strings.ToLower(shopDomain)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, connection.ErrConnectionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all connected stores
func (r *GormConnectionRepository) FindAll(ctx context.Context) ([]connection.Connection, error) {
	var connectionModels []models.ShopConnectionModel
	if err := r.db.WithContext(ctx).
		Order("installed_at ASC").
		Find(&connectionModels).Error; err != nil {
		return nil, err
	}

	connections := make([]connection.Connection, len(connectionModels))
	for i, model := range connectionModels {
		connections[i] = *model.ToDomain()
	}
	return connections, nil
}

// Save creates or updates a connection
func (r *GormConnectionRepository) Save(ctx context.Context, conn *connection.Connection) error {
	model := models.ShopConnectionModelFromDomain(conn)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a connection by shop domain
func (r *GormConnectionRepository) Delete(ctx context.Context, shopDomain string) error {
	result := r.db.WithContext(ctx).
		Where("shop_domain = ?", strings.ToLower(shopDomain)).
		Delete(&models.ShopConnectionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return connection.ErrConnectionNotFound
	}
	return nil
}

// Ensure GormConnectionRepository implements the Repository interface
var _ connection.Repository = (*GormConnectionRepository)(nil)
