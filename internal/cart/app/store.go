package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	catalog "github.com/dwikikusuma/storefront/internal/catalog/domain"
)

// StorageKey is the slot holding the persisted cart.
const StorageKey = "cart"

// Store owns one session's cart. Every mutation publishes a new snapshot,
// notifies observers, then writes the snapshot to session storage.
type Store struct {
	storage SessionStorage
	log     *slog.Logger

	mu      sync.Mutex
	cart    domain.Cart
	subs    map[int]func(domain.Cart)
	nextSub int
}

// NewStore restores the cart persisted in storage. A missing slot gives an
// empty cart, as does malformed data, which is also logged. A failed read
// returns an error wrapping ErrStorageUnavailable and no store.
func NewStore(ctx context.Context, storage SessionStorage, log *slog.Logger) (*Store, error) {
	cart, err := restore(ctx, storage, log)
	if err != nil {
		return nil, err
	}
	return &Store{
		storage: storage,
		log:     log,
		cart:    cart,
		subs:    map[int]func(domain.Cart){},
	}, nil
}

func restore(ctx context.Context, storage SessionStorage, log *slog.Logger) (domain.Cart, error) {
	raw, ok, err := storage.GetItem(ctx, StorageKey)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%w: read cart: %w", ErrStorageUnavailable, err)
	}
	if !ok || raw == "" {
		return domain.Cart{}, nil
	}

	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warn("parsing cart data from session storage failed", slog.Any("err", err))
		return domain.Cart{}, nil
	}
	return domain.Normalize(items), nil
}

// Cart returns the current snapshot.
func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *Store) AddToCart(ctx context.Context, p catalog.Product) error {
	return s.apply(ctx, func(c domain.Cart) domain.Cart { return c.Add(p) })
}

func (s *Store) IncreaseQuantity(ctx context.Context, productID int) error {
	return s.apply(ctx, func(c domain.Cart) domain.Cart { return c.Increase(productID) })
}

// DecreaseQuantity removes the item instead of leaving it at zero.
func (s *Store) DecreaseQuantity(ctx context.Context, productID int) error {
	return s.apply(ctx, func(c domain.Cart) domain.Cart { return c.Decrease(productID) })
}

func (s *Store) GetTotalCartItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalItems()
}

func (s *Store) CalculateTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// Subscribe registers fn to receive every new snapshot, in order. fn runs
// with the store locked: it must not block or call back into the store.
func (s *Store) Subscribe(fn func(domain.Cart)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) observed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs) > 0
}

// apply publishes the transition before persisting it, so a failed write
// leaves the in-memory cart valid and ahead of storage.
func (s *Store) apply(ctx context.Context, transition func(domain.Cart) domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = transition(s.cart)
	for _, fn := range s.subs {
		fn(s.cart.Clone())
	}
	return s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) error {
	items := s.cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}

	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.SetItem(ctx, StorageKey, string(b)); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
