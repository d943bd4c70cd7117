package app

import (
	"context"

	catalog "github.com/dwikikusuma/storefront/internal/catalog/domain"
)

// SessionStorage is the key/value storage of a single browser session.
// GetItem reports ok=false when key has never been written.
type SessionStorage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
}

// SessionBackend hands out the storage of each session.
type SessionBackend interface {
	Session(sessionID string) SessionStorage
	Ping(ctx context.Context) error
}

// ProductFinder resolves a product id for add-to-cart. It returns
// ErrUnknownProduct when the catalog has no such product.
type ProductFinder interface {
	FindProduct(ctx context.Context, id int) (catalog.Product, error)
}
