package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Coco120903/BananaMeow-sub000/pkg/db/models"
)

// SeedProduct inserts a product with the provided price and stock.
func SeedProduct(t *testing.T, db *gorm.DB, name string, priceCents int64, stock int) models.Product {
	t.Helper()
	product := models.Product{
		ID:         uuid.New(),
		Name:       name,
		PriceCents: priceCents,
		Stock:      stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

// ProductStock reads the current stock for a product.
func ProductStock(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return product.Stock
}
