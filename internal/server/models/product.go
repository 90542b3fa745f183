package models

// Product is a catalog item. IDs are client-supplied, matching the seed data
// the storefront ships with.
type Product struct {
	ID               int64
	Name             string
	Price            float64
	Image            string
	Description      string
	IsFeatured       bool
	Category         string
	Brand            string
	TechnicalDetails string
}

// ProductPatch is a partial update. Nil fields were absent from the request
// and must be left untouched; only non-nil fields are applied.
type ProductPatch struct {
	ID          *int64
	Name        *string
	Price       *float64
	Image       *string
	Description *string
	IsFeatured  *bool
	Category    *string
	Brand       *string
}

// IsZero reports whether the patch carries no fields besides the id.
func (p ProductPatch) IsZero() bool {
	return p.Name == nil && p.Price == nil && p.Image == nil &&
		p.Description == nil && p.IsFeatured == nil && p.Category == nil && p.Brand == nil
}

// ProductFilter narrows catalog listings. Empty strings mean "no filter".
// CaseInsensitive switches category/brand matching from exact to ILIKE.
type ProductFilter struct {
	Category        string
	Brand           string
	CaseInsensitive bool
}
