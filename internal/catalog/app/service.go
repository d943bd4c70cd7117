package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	source ProductSource
	log    *slog.Logger

	mu       sync.RWMutex
	products []domain.Product
	byID     map[int]int
}

func NewService(source ProductSource, log *slog.Logger) *Service {
	return &Service{
		source: source,
		log:    log,
		byID:   map[int]int{},
	}
}

// Load fetches the product sequence once. On success it replaces the
// current sequence; on failure the error is logged and the previous
// sequence stays in place. There is no retry.
func (s *Service) Load(ctx context.Context) {
	fetched, err := s.source.List(ctx)
	if err != nil {
		s.log.Error("catalog load failed", slog.Any("err", err))
		return
	}

	products := make([]domain.Product, 0, len(fetched))
	byID := make(map[int]int, len(fetched))
	for _, p := range fetched {
		if err := p.Validate(); err != nil {
			s.log.Warn("skipping invalid product", slog.Int("id", p.ID), slog.Any("err", err))
			continue
		}
		if _, dup := byID[p.ID]; dup {
			s.log.Warn("skipping duplicate product", slog.Int("id", p.ID))
			continue
		}
		byID[p.ID] = len(products)
		products = append(products, p)
	}

	s.mu.Lock()
	s.products = products
	s.byID = byID
	s.mu.Unlock()

	s.log.Info("catalog loaded", slog.Int("products", len(products)))
}

// Products returns a copy of the displayed sequence.
func (s *Service) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Service) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return s.products[idx], nil
}
