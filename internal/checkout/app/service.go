package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type CartReader interface {
	GetCart(ctx context.Context, sessionID string) ([]CartItem, error)
}

type CartItem struct {
	ProductID int
	Quantity  int
}

// CatalogReader returns ErrUnknownProduct for ids the catalog lacks.
type CatalogReader interface {
	GetProduct(ctx context.Context, productID int) (Product, error)
}

type Product struct {
	ID    int
	Name  string
	Price decimal.Decimal
}

type Service struct {
	Cart    CartReader
	Catalog CatalogReader

	maxConcurrent int
}

func NewService(cart CartReader, catalog CatalogReader, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	return &Service{
		Cart:          cart,
		Catalog:       catalog,
		maxConcurrent: maxConcurrent,
	}
}

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrUnknownProduct = errors.New("unknown product")
)

// Quote prices the session's cart at current catalog prices. Nothing is
// charged and the cart is left as is.
func (s *Service) Quote(ctx context.Context, sessionID string) (domain.Quote, error) {
	items, err := s.Cart.GetCart(ctx, sessionID)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("quantity must be greater than zero: %d", it.Quantity)
			}

			product, err := s.Catalog.GetProduct(gctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get product %d: %w", it.ProductID, err)
			}

			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			lines[idx] = domain.QuoteLine{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  it.Quantity,
				UnitPrice: domain.Money{Currency: domain.CurrencyUSD, Amount: product.Price},
				LineTotal: domain.Money{Currency: domain.CurrencyUSD, Amount: lineTotal.Round(2)},
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	total := decimal.Zero
	count := 0
	for idx, line := range lines {
		total = total.Add(line.UnitPrice.Amount.Mul(decimal.NewFromInt(int64(items[idx].Quantity))))
		count += line.Quantity
	}

	return domain.Quote{
		Lines:      lines,
		TotalItems: count,
		Total:      domain.Money{Currency: domain.CurrencyUSD, Amount: total.Round(2)},
	}, nil
}
