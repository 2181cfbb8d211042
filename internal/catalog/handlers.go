package catalog

import (
	"encoding/json"
	"net/http"

	"poolside-catalog/internal/logger"

	"github.com/gorilla/mux"
)

// Handler handles the public storefront JSON endpoints
type Handler struct {
	repo Repository
}

// NewHandler creates a new catalog handler
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// ListServices handles GET /api/services?category=...
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		raw = string(DefaultCategory)
	}
	category, err := ParseCategory(raw)
	if err != nil {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}

	services, err := h.repo.ListByCategory(r.Context(), category)
	if err != nil {
		logger.Errorf("ListServices: %v", err)
		http.Error(w, "failed to load services", http.StatusInternalServerError)
		return
	}

	resp := ServiceListResponse{
		Category: category,
		Services: services,
		Total:    len(services),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetService handles GET /api/services/{id}
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	service, err := h.repo.GetService(r.Context(), id)
	if err != nil {
		logger.Errorf("GetService: %v", err)
		http.Error(w, "failed to load service", http.StatusInternalServerError)
		return
	}
	if service == nil {
		http.Error(w, "service not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(service)
}
