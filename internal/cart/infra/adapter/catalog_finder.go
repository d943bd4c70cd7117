package adapter

import (
	"context"
	"errors"
	"fmt"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalog "github.com/dwikikusuma/storefront/internal/catalog/domain"
)

// CatalogFinder resolves add-to-cart product ids against the loaded catalog.
type CatalogFinder struct {
	svc *catalogapp.Service
}

func NewCatalogFinder(svc *catalogapp.Service) *CatalogFinder {
	return &CatalogFinder{svc: svc}
}

func (f *CatalogFinder) FindProduct(ctx context.Context, id int) (catalog.Product, error) {
	p, err := f.svc.GetProduct(ctx, id)
	if errors.Is(err, catalogapp.ErrNotFound) || errors.Is(err, catalogapp.ErrInvalidInput) {
		return catalog.Product{}, fmt.Errorf("product %d: %w", id, cartapp.ErrUnknownProduct)
	}
	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}
