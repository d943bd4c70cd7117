// Package static serves a catalog compiled into the binary.
package static

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

//go:embed products.json
var defaultProducts []byte

type ProductSource struct {
	products []domain.Product
}

// NewProductSource returns the embedded catalog.
func NewProductSource() (*ProductSource, error) {
	var products []domain.Product
	if err := json.Unmarshal(defaultProducts, &products); err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}
	return &ProductSource{products: products}, nil
}

// FromProducts serves a fixed in-memory list.
func FromProducts(products []domain.Product) *ProductSource {
	return &ProductSource{products: products}
}

func (s *ProductSource) List(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}
