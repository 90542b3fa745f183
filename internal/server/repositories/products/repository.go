// Package products persists catalog items.
package products

import (
	"context"

	"github.com/expreshop/expreshop/internal/server/models"
)

// Repository is the ProductStore behind the catalog endpoints.
type Repository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// Update applies the non-nil fields of patch to the product with the
	// given id and returns the updated row. common.ErrNotFound when absent.
	Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter, offset, limit int) ([]models.Product, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	// DistinctBrands lists brands, optionally restricted to one category.
	DistinctBrands(ctx context.Context, category string) ([]string, error)
}
