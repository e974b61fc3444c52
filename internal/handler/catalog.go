package handler

import (
	"net/http"

	"refab-api/internal/catalog"
	"refab-api/pkg/apierror"
	"refab-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CatalogHandler serves the read-only device and issue catalogs the wizard
// browses through.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// Categories handles GET /catalog/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{
		"categories": h.catalog.Categories(),
	})
}

// Brands handles GET /catalog/{category}/brands
func (h *CatalogHandler) Brands(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	brands := h.catalog.Brands(category)
	if brands == nil {
		response.Error(w, apierror.NotFound("Unknown category"))
		return
	}
	response.OK(w, map[string]interface{}{
		"category": category,
		"brands":   brands,
	})
}

// Models handles GET /catalog/{category}/{brand}/models
func (h *CatalogHandler) Models(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	brand := chi.URLParam(r, "brand")
	models := h.catalog.Models(category, brand)
	if models == nil {
		response.Error(w, apierror.NotFound("Unknown category or brand"))
		return
	}
	response.OK(w, map[string]interface{}{
		"category": category,
		"brand":    brand,
		"models":   models,
	})
}

// Storage handles GET /catalog/models/{model}/storage
func (h *CatalogHandler) Storage(w http.ResponseWriter, r *http.Request) {
	mdl := chi.URLParam(r, "model")
	options := h.catalog.StorageOptions(mdl)
	response.OK(w, map[string]interface{}{
		"model":   mdl,
		"storage": options,
	})
}

// Issues handles GET /catalog/issues
func (h *CatalogHandler) Issues(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{
		"issues": h.catalog.Issues(),
	})
}
