package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

// ProductSource supplies the ordered product sequence in a single call.
type ProductSource interface {
	List(ctx context.Context) ([]domain.Product, error)
}
