package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/expreshop/expreshop/internal/common"
	"github.com/expreshop/expreshop/internal/server/models"
)

type productJSON struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	IsFeatured  bool    `json:"isfeatured"`
	Category    string  `json:"category,omitempty"`
	Brand       string  `json:"brand,omitempty"`
}

// productPatchJSON mirrors productJSON with every field optional, so absent
// keys are distinguishable from zero values.
type productPatchJSON struct {
	ID          *int64   `json:"id"`
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Image       *string  `json:"image"`
	Description *string  `json:"description"`
	IsFeatured  *bool    `json:"isfeatured"`
	Category    *string  `json:"category"`
	Brand       *string  `json:"brand"`
}

func toProductJSON(p models.Product) productJSON {
	return productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		IsFeatured:  p.IsFeatured,
		Category:    p.Category,
		Brand:       p.Brand,
	}
}

func toProductList(list []models.Product) []productJSON {
	out := make([]productJSON, 0, len(list))
	for _, p := range list {
		out = append(out, toProductJSON(p))
	}
	return out
}

func (p productJSON) toModel() *models.Product {
	return &models.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		IsFeatured:  p.IsFeatured,
		Category:    p.Category,
		Brand:       p.Brand,
	}
}

func (p productPatchJSON) toPatch() models.ProductPatch {
	return models.ProductPatch{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		IsFeatured:  p.IsFeatured,
		Category:    p.Category,
		Brand:       p.Brand,
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func (s *Server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)
	category := r.URL.Query().Get("category")
	brand := r.URL.Query().Get("brand")

	list, err := s.products.List(r.Context(), category, brand, skip, limit)
	if err != nil {
		s.logger.Error(r.Context(), "list products failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toProductList(list))
}

func (s *Server) handleProductsPaginated(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 9)
	category := r.URL.Query().Get("category")
	brand := r.URL.Query().Get("brand")

	list, err := s.products.ListPaginated(r.Context(), category, brand, page, limit)
	if err != nil {
		s.logger.Error(r.Context(), "list paginated products failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toProductList(list))
}

func (s *Server) handleProductCreate(w http.ResponseWriter, r *http.Request) {
	var req productJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	created, err := s.products.Create(r.Context(), req.toModel())
	if err != nil {
		s.logger.Error(r.Context(), "create product failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toProductJSON(*created))
}

func (s *Server) handleProductsCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req []productJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	batch := make([]*models.Product, 0, len(req))
	for _, p := range req {
		batch = append(batch, p.toModel())
	}

	created, err := s.products.CreateBatch(r.Context(), batch)
	if err != nil {
		s.logger.Error(r.Context(), "create product batch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]productJSON, 0, len(created))
	for _, p := range created {
		out = append(out, toProductJSON(*p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProductsUpdateBatch(w http.ResponseWriter, r *http.Request) {
	var req []productPatchJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	patches := make([]models.ProductPatch, 0, len(req))
	for _, p := range req {
		patches = append(patches, p.toPatch())
	}

	updated, err := s.products.UpdateBatch(r.Context(), patches)
	if err != nil {
		s.logger.Error(r.Context(), "update product batch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toProductList(updated))
}

func (s *Server) handleProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productPatchJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := s.products.Update(r.Context(), id, req.toPatch())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		s.logger.Error(r.Context(), "update product failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toProductJSON(*updated))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.products.Categories(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := s.products.Filters(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.logger.Error(r.Context(), "list filters failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"categories": filters.Categories,
		"brands":     filters.Brands,
	})
}
