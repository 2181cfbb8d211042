// Package view builds the storefront presentation: pricing cards and the
// page wrapper around them. Everything here is a pure function of the
// records and the selected category.
package view

import (
	"math"

	"poolside-catalog/internal/catalog"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var dollars = message.NewPrinter(language.AmericanEnglish)

// FormatDollars renders an amount as whole-dollar US currency with digit
// grouping, e.g. 1250 -> "$1,250".
func FormatDollars(amount float64) string {
	return dollars.Sprintf("$%d", int64(math.Round(amount)))
}

// SizeRow is one formatted tiered-price line on a card.
type SizeRow struct {
	Label string `json:"label"`
	Price string `json:"price"`
}

// PricingCard is a render-ready service card.
type PricingCard struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Badge         string    `json:"badge,omitempty"`
	ShowBasePrice bool      `json:"show_base_price"`
	StartingAt    string    `json:"starting_at,omitempty"`
	SizeHeading   string    `json:"size_heading,omitempty"`
	SizeRows      []SizeRow `json:"size_rows"`
	Features      []string  `json:"features"`
	HasImage      bool      `json:"has_image"`
}

func sizeHeading(category catalog.Category) string {
	if category == catalog.CategoryOpenings || category == catalog.CategoryClosings {
		return "Savings:"
	}
	return "Maintenance Visits:"
}

// Card builds the presentation for one record.
func Card(rec catalog.ServiceRecord) PricingCard {
	card := PricingCard{
		ID:            rec.ID,
		Name:          rec.Name,
		Description:   rec.Description,
		ShowBasePrice: !rec.HideBasePrice,
		SizeRows:      []SizeRow{},
		Features:      append([]string{}, rec.Features...),
		HasImage:      rec.ImageURL != nil,
	}

	if rec.IsFeatured {
		card.Badge = "POPULAR"
	}
	if !rec.HideBasePrice {
		card.StartingAt = FormatDollars(rec.BasePrice)
	}

	if len(rec.SizeOptions) > 0 {
		// The heading only appears alongside a visible base price.
		if !rec.HideBasePrice {
			card.SizeHeading = sizeHeading(rec.Category)
		}
		for _, opt := range rec.SizeOptions {
			card.SizeRows = append(card.SizeRows, SizeRow{
				Label: opt.Size,
				Price: FormatDollars(opt.Price),
			})
		}
	}

	return card
}

// Cards builds the card list in the records' stored order.
func Cards(records []catalog.ServiceRecord) []PricingCard {
	cards := make([]PricingCard, 0, len(records))
	for _, rec := range records {
		cards = append(cards, Card(rec))
	}
	return cards
}
