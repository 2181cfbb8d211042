package catalog

import (
	"fmt"
	"time"
)

// Category is one of the four fixed service groupings. The set is closed:
// records carrying any other label are rejected rather than stored.
type Category string

const (
	CategoryFullService Category = "Full-Service Pool Packages"
	CategoryOpenings    Category = "Pool Openings"
	CategoryClosings    Category = "Pool Closings"
	CategorySpa         Category = "Spa Packages"
)

// DefaultCategory is the tab selected when the storefront first loads.
const DefaultCategory = CategoryFullService

// Categories returns the fixed display-order list of category tabs.
func Categories() []Category {
	return []Category{
		CategoryFullService,
		CategoryOpenings,
		CategoryClosings,
		CategorySpa,
	}
}

// ParseCategory validates a raw category label against the closed set.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// SizeOption is one tiered price row on a service card. Slice order is
// display order within the card.
type SizeOption struct {
	Size  string  `json:"size"`
	Price float64 `json:"price"`
}

// ServiceRecord represents one service package in the catalog
type ServiceRecord struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	BasePrice     float64      `json:"base_price"`
	HideBasePrice bool         `json:"hide_base_price"`
	SizeOptions   []SizeOption `json:"size_options"`
	Features      []string     `json:"features"`
	ImageURL      *string      `json:"image_url"`
	Category      Category     `json:"category"`
	IsFeatured    bool         `json:"is_featured"`
	DisplayOrder  int          `json:"display_order"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Clone returns a structurally independent copy of the record. Edits to the
// copy's slices or image URL never show through to the original, which keeps
// admin drafts isolated from the rendered list.
func (r ServiceRecord) Clone() ServiceRecord {
	c := r
	c.SizeOptions = append([]SizeOption{}, r.SizeOptions...)
	c.Features = append([]string{}, r.Features...)
	if r.ImageURL != nil {
		v := *r.ImageURL
		c.ImageURL = &v
	}
	return c
}

// ServiceListResponse wraps one category's ordered listing
type ServiceListResponse struct {
	Category Category        `json:"category"`
	Services []ServiceRecord `json:"services"`
	Total    int             `json:"total"`
}

// CreateServiceRequest represents the payload for creating a service.
// ID and timestamps are store-assigned and deliberately absent.
type CreateServiceRequest struct {
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	BasePrice     float64      `json:"base_price"`
	HideBasePrice bool         `json:"hide_base_price"`
	SizeOptions   []SizeOption `json:"size_options"`
	Features      []string     `json:"features"`
	ImageURL      *string      `json:"image_url"`
	Category      Category     `json:"category"`
	IsFeatured    bool         `json:"is_featured"`
	DisplayOrder  int          `json:"display_order"`
}

// UpdateServiceRequest represents the payload for updating a service.
// Nil fields are left untouched. SetImageURL distinguishes "clear the
// image" from "leave it alone", which a plain pointer cannot express.
type UpdateServiceRequest struct {
	Name          *string       `json:"name,omitempty"`
	Description   *string       `json:"description,omitempty"`
	BasePrice     *float64      `json:"base_price,omitempty"`
	HideBasePrice *bool         `json:"hide_base_price,omitempty"`
	SizeOptions   *[]SizeOption `json:"size_options,omitempty"`
	Features      *[]string     `json:"features,omitempty"`
	SetImageURL   bool          `json:"set_image_url,omitempty"`
	ImageURL      *string       `json:"image_url,omitempty"`
	Category      *Category     `json:"category,omitempty"`
	IsFeatured    *bool         `json:"is_featured,omitempty"`
	DisplayOrder  *int          `json:"display_order,omitempty"`
}
