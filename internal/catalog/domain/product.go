package domain

import (
	"errors"
	"strings"
)

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is immutable once loaded from a catalog source.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Stock       *int    `json:"stock,omitempty"`
	Rating      *Rating `json:"rating,omitempty"`
}

var (
	errBadID    = errors.New("id must be positive")
	errNoTitle  = errors.New("title is required")
	errBadPrice = errors.New("price must be non-negative")
	errBadStock = errors.New("stock must be non-negative")
)

func (p Product) Validate() error {
	switch {
	case p.ID <= 0:
		return errBadID
	case strings.TrimSpace(p.Title) == "":
		return errNoTitle
	case p.Price < 0:
		return errBadPrice
	case p.Stock != nil && *p.Stock < 0:
		return errBadStock
	}
	return nil
}
