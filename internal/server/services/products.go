package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/expreshop/expreshop/internal/common"
	"github.com/expreshop/expreshop/internal/dbx"
	"github.com/expreshop/expreshop/internal/server/models"
	"github.com/expreshop/expreshop/internal/server/repositories/repomanager"
)

// CatalogFilters groups the distinct attribute values the storefront builds
// its filter sidebar from.
type CatalogFilters struct {
	Categories []string
	Brands     []string
}

// ProductService provides catalog operations: filtered listings, creation
// (single and batch), partial updates (single and batch), and distinct
// attribute lookups.
type ProductService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProductService(db *sql.DB, m repomanager.RepositoryManager) *ProductService {
	return &ProductService{db: db, repomanager: m}
}

// List returns products matching the filter exactly, with offset/limit paging.
func (s *ProductService) List(ctx context.Context, category, brand string, skip, limit int) ([]models.Product, error) {
	repo := s.repomanager.Products(s.db)
	filter := models.ProductFilter{Category: category, Brand: brand}
	return repo.List(ctx, filter, skip, limit)
}

// ListPaginated returns the given 1-based page, matching category and brand
// case-insensitively.
func (s *ProductService) ListPaginated(ctx context.Context, category, brand string, page, limit int) ([]models.Product, error) {
	if page < 1 {
		page = 1
	}
	repo := s.repomanager.Products(s.db)
	filter := models.ProductFilter{Category: category, Brand: brand, CaseInsensitive: true}
	return repo.List(ctx, filter, (page-1)*limit, limit)
}

func (s *ProductService) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	repo := s.repomanager.Products(s.db)
	created, err := repo.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("error creating product: %w", err)
	}
	return created, nil
}

// CreateBatch inserts all products in one transaction: either every row lands
// or none do.
func (s *ProductService) CreateBatch(ctx context.Context, batch []*models.Product) ([]*models.Product, error) {
	created := make([]*models.Product, 0, len(batch))
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Products(tx)
		for _, product := range batch {
			p, err := repo.Create(ctx, product)
			if err != nil {
				return fmt.Errorf("error creating product %d: %w", product.ID, err)
			}
			created = append(created, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	repo := s.repomanager.Products(s.db)
	return repo.Update(ctx, id, patch)
}

// UpdateBatch applies each patch to the product named by its id, inside one
// transaction. Patches without an id and patches whose id matches no product
// are skipped, not errored.
func (s *ProductService) UpdateBatch(ctx context.Context, patches []models.ProductPatch) ([]models.Product, error) {
	updated := make([]models.Product, 0, len(patches))
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Products(tx)
		for _, patch := range patches {
			if patch.ID == nil {
				continue
			}
			p, err := repo.Update(ctx, *patch.ID, patch)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					continue
				}
				return fmt.Errorf("error updating product %d: %w", *patch.ID, err)
			}
			updated = append(updated, *p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Categories returns the distinct non-null categories in the catalog.
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	repo := s.repomanager.Products(s.db)
	return repo.DistinctCategories(ctx)
}

// Filters returns all categories plus the brands available, the latter
// optionally restricted to one category.
func (s *ProductService) Filters(ctx context.Context, category string) (*CatalogFilters, error) {
	repo := s.repomanager.Products(s.db)

	categories, err := repo.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}
	brands, err := repo.DistinctBrands(ctx, category)
	if err != nil {
		return nil, err
	}
	return &CatalogFilters{Categories: categories, Brands: brands}, nil
}
