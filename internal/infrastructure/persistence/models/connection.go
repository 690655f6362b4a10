// Package models contains the GORM persistence models.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelfsync/backend/internal/domain/connection"
)

// ShopConnectionModel is the persistence model for a connected store
type ShopConnectionModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopDomain  string    `gorm:"uniqueIndex;not null"`
	AccessToken string    `gorm:"not null"`
	Scope       string
	InstalledAt time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for ShopConnectionModel
func (ShopConnectionModel) TableName() string {
	return "shop_connections"
}

// ToDomain converts the persistence model to a domain connection
func (m *ShopConnectionModel) ToDomain() *connection.Connection {
	return &connection.Connection{
		ID:          m.ID,
		ShopDomain:  m.ShopDomain,
		AccessToken: m.AccessToken,
		Scope:       m.Scope,
		InstalledAt: m.InstalledAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ShopConnectionModelFromDomain converts a domain connection to the persistence model
func ShopConnectionModelFromDomain(c *connection.Connection) *ShopConnectionModel {
	return &ShopConnectionModel{
		ID:          c.ID,
		ShopDomain:  c.ShopDomain,
		AccessToken: c.AccessToken,
		Scope:       c.Scope,
		InstalledAt: c.InstalledAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
