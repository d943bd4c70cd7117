package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnknownProduct = errors.New("unknown product")

	ErrStorageUnavailable = errors.New("session storage unavailable")
)

type sessionEntry struct {
	store    *Store
	lastUsed time.Time
}

// Service keeps one Store per session, restoring it from the backend on
// first use.
type Service struct {
	backend  SessionBackend
	products ProductFinder
	log      *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	loading  singleflight.Group
}

func NewService(backend SessionBackend, products ProductFinder, log *slog.Logger) *Service {
	return &Service{
		backend:  backend,
		products: products,
		log:      log,
		now:      time.Now,
		sessions: map[string]*sessionEntry{},
	}
}

// Store returns the session's store, restoring it from the backend on first
// use. The restore runs outside the registry lock and at most once per
// session at a time. A failed restore is not cached.
func (s *Service) Store(ctx context.Context, sessionID string) (*Store, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidInput
	}

	if st, ok := s.cached(sessionID); ok {
		return st, nil
	}

	v, err, _ := s.loading.Do(sessionID, func() (any, error) {
		if st, ok := s.cached(sessionID); ok {
			return st, nil
		}

		st, err := NewStore(ctx, s.backend.Session(sessionID), s.log.With(slog.String("session", sessionID)))
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.sessions[sessionID] = &sessionEntry{store: st, lastUsed: s.now()}
		s.mu.Unlock()
		return st, nil
	})
	if err != nil {
		s.log.Warn("restoring cart failed", slog.String("session", sessionID), slog.Any("err", err))
		return nil, err
	}
	return v.(*Store), nil
}

func (s *Service) cached(sessionID string) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	e.lastUsed = s.now()
	return e.store, true
}

func (s *Service) Cart(ctx context.Context, sessionID string) (domain.Cart, error) {
	st, err := s.Store(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	return st.Cart(), nil
}

// AddProduct resolves productID through the catalog and adds it.
func (s *Service) AddProduct(ctx context.Context, sessionID string, productID int) (domain.Cart, error) {
	if productID <= 0 {
		return domain.Cart{}, ErrInvalidInput
	}
	st, err := s.Store(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	p, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}

	if err := st.AddToCart(ctx, p); err != nil {
		return st.Cart(), err
	}
	return st.Cart(), nil
}

func (s *Service) IncreaseQuantity(ctx context.Context, sessionID string, productID int) (domain.Cart, error) {
	st, err := s.Store(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := st.IncreaseQuantity(ctx, productID); err != nil {
		return st.Cart(), err
	}
	return st.Cart(), nil
}

func (s *Service) DecreaseQuantity(ctx context.Context, sessionID string, productID int) (domain.Cart, error) {
	st, err := s.Store(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := st.DecreaseQuantity(ctx, productID); err != nil {
		return st.Cart(), err
	}
	return st.Cart(), nil
}

// Prune forgets stores idle for longer than idle and reports how many were
// dropped. Stores with observers are kept. Persisted carts stay in the
// backend, so the next access restores them.
func (s *Service) Prune(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) && !e.store.observed() {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Service) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}
