package view

import (
	"encoding/json"
	"net/http"

	"poolside-catalog/internal/catalog"
	"poolside-catalog/internal/logger"
)

// Page states, in precedence order: an outstanding fetch beats an error,
// an error beats the empty message, and only a non-empty listing is ready.
const (
	StateLoading = "loading"
	StateError   = "error"
	StateEmpty   = "empty"
	StateReady   = "ready"
)

const (
	pageTitle   = "Puddle Pool Services of Monmouth County"
	pageTagline = "Your Job Is To Swim!"

	loadFailedMessage = "Failed to load services"
	emptyMessage      = "No services available in this category yet."
)

// Page is the full storefront render model for one category tab.
type Page struct {
	Title      string        `json:"title"`
	Tagline    string        `json:"tagline"`
	Categories []string      `json:"categories"`
	Selected   string        `json:"selected"`
	State      string        `json:"state"`
	Error      string        `json:"error,omitempty"`
	Message    string        `json:"message,omitempty"`
	Cards      []PricingCard `json:"cards"`
}

// BuildPage assembles the page for a category from the fetch outcome.
func BuildPage(category catalog.Category, records []catalog.ServiceRecord, err error) Page {
	tabs := []string{}
	for _, c := range catalog.Categories() {
		tabs = append(tabs, string(c))
	}

	p := Page{
		Title:      pageTitle,
		Tagline:    pageTagline,
		Categories: tabs,
		Selected:   string(category),
		Cards:      []PricingCard{},
	}

	switch {
	case err != nil:
		p.State = StateError
		p.Error = loadFailedMessage
	case len(records) == 0:
		p.State = StateEmpty
		p.Message = emptyMessage
	default:
		p.State = StateReady
		p.Cards = Cards(records)
	}

	return p
}

// Handler serves the storefront page endpoint
type Handler struct {
	repo catalog.Repository
}

// NewHandler creates a storefront view handler
func NewHandler(repo catalog.Repository) *Handler {
	return &Handler{repo: repo}
}

// Storefront handles GET /api/storefront?category=...
// A store failure still renders the page: it degrades to the error banner
// state rather than a bare 5xx, matching how the card grid surfaces it.
func (h *Handler) Storefront(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		raw = string(catalog.DefaultCategory)
	}
	category, err := catalog.ParseCategory(raw)
	if err != nil {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}

	records, err := h.repo.ListByCategory(r.Context(), category)
	if err != nil {
		logger.Errorf("Storefront: %v", err)
	}

	page := BuildPage(category, records, err)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}
