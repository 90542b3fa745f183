package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/expreshop/expreshop/internal/common"
	"github.com/expreshop/expreshop/internal/dbx"
	"github.com/expreshop/expreshop/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `id, name, price, image, description, isfeatured,
	COALESCE(category, ''), COALESCE(brand, ''), COALESCE(technical_details, '')`

func scanProduct(row interface{ Scan(...any) error }, p *models.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Description,
		&p.IsFeatured, &p.Category, &p.Brand, &p.TechnicalDetails)
}

func (r *PostgresRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	query :=
		`INSERT INTO products (id, name, price, image, description, isfeatured, category, brand, technical_details)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''))
		 `

	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Price, product.Image, product.Description,
		product.IsFeatured, product.Category, product.Brand, product.TechnicalDetails,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return product, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + `
		 FROM products
		 WHERE id = $1
		 `

	p := &models.Product{}
	err := scanProduct(r.db.QueryRowContext(ctx, query, id), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Update builds a SET clause from the fields present in the patch. A patch
// with no fields degenerates to a lookup.
func (r *PostgresRepository) Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	if patch.IsZero() {
		return r.GetByID(ctx, id)
	}

	set := make([]string, 0, 7)
	args := make([]any, 0, 8)
	args = append(args, id)

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addNullable := func(column string, value string) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = NULLIF($%d, '')", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.IsFeatured != nil {
		add("isfeatured", *patch.IsFeatured)
	}
	if patch.Category != nil {
		addNullable("category", *patch.Category)
	}
	if patch.Brand != nil {
		addNullable("brand", *patch.Brand)
	}

	query := `UPDATE products SET ` + strings.Join(set, ", ") + `
		 WHERE id = $1
		 RETURNING ` + productColumns

	p := &models.Product{}
	err := scanProduct(r.db.QueryRowContext(ctx, query, args...), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.ProductFilter, offset, limit int) ([]models.Product, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)

	match := "="
	if filter.CaseInsensitive {
		match = "ILIKE"
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category %s $%d", match, len(args)))
	}
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		where = append(where, fmt.Sprintf("brand %s $%d", match, len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	query :=
		`SELECT DISTINCT category FROM products
		 WHERE category IS NOT NULL
		 ORDER BY category
		 `
	return r.distinct(ctx, query)
}

func (r *PostgresRepository) DistinctBrands(ctx context.Context, category string) ([]string, error) {
	if category != "" {
		query :=
			`SELECT DISTINCT brand FROM products
			 WHERE brand IS NOT NULL AND category = $1
			 ORDER BY brand
			 `
		return r.distinct(ctx, query, category)
	}
	query :=
		`SELECT DISTINCT brand FROM products
		 WHERE brand IS NOT NULL
		 ORDER BY brand
		 `
	return r.distinct(ctx, query)
}

func (r *PostgresRepository) distinct(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return values, nil
}
