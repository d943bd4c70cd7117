package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	catalog "github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/google/go-cmp/cmp"
)

// fakeStorage is an in-memory SessionStorage that counts writes.
type fakeStorage struct {
	mu     sync.Mutex
	items  map[string]string
	sets   int
	getErr error
	setErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{items: map[string]string{}}
}

func (f *fakeStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.items[key]
	return v, ok, nil
}

func (f *fakeStorage) SetItem(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.items[key] = value
	return nil
}

func (f *fakeStorage) persisted(t *testing.T) []domain.CartItem {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []domain.CartItem
	if err := json.Unmarshal([]byte(f.items[StorageKey]), &items); err != nil {
		t.Fatalf("stored cart does not parse: %v (%q)", err, f.items[StorageKey])
	}
	return items
}

var (
	sampleProduct = catalog.Product{ID: 1, Title: "Test Product", Description: "Test product description", Category: "music", Price: 100, Image: "test-image.jpg"}
	product2      = catalog.Product{ID: 3, Title: "Test Product 2", Description: "Test product 2 description", Category: "sports", Price: 50, Image: "test-image-2.jpg"}
)

func newTestStore(t *testing.T) (*Store, *fakeStorage) {
	t.Helper()
	storage := newFakeStorage()
	st, err := NewStore(context.Background(), storage, logger.Discard())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return st, storage
}

func TestStoreLoadsCartFromStorage(t *testing.T) {
	storage := newFakeStorage()
	b, _ := json.Marshal([]domain.CartItem{{Product: sampleProduct, Quantity: 2}})
	storage.items[StorageKey] = string(b)

	st, err := NewStore(context.Background(), storage, logger.Discard())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	cart := st.Cart()
	if cart.Len() != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("restored cart = %+v", cart.Items)
	}
}

func TestStoreRestoreFallsBackToEmpty(t *testing.T) {
	cases := map[string]func(*fakeStorage){
		"missing slot":   func(f *fakeStorage) {},
		"malformed json": func(f *fakeStorage) { f.items[StorageKey] = "{not json" },
		"wrong shape":    func(f *fakeStorage) { f.items[StorageKey] = `{"id":1}` },
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			storage := newFakeStorage()
			setup(storage)

			st, err := NewStore(context.Background(), storage, logger.Discard())
			if err != nil {
				t.Fatalf("NewStore: %v", err)
			}
			if st.Cart().Len() != 0 {
				t.Fatalf("expected empty cart, got %+v", st.Cart().Items)
			}
		})
	}
}

func TestStoreRestoreReadErrorIsReturned(t *testing.T) {
	storage := newFakeStorage()
	storage.items[StorageKey] = `[{"id":3,"title":"Test Product 2","price":50,"image":"x.jpg","quantity":5}]`
	storage.getErr = errors.New("i/o timeout")

	st, err := NewStore(context.Background(), storage, logger.Discard())
	if st != nil {
		t.Fatalf("expected no store on read error")
	}
	if !errors.Is(err, ErrStorageUnavailable) || !errors.Is(err, storage.getErr) {
		t.Fatalf("expected ErrStorageUnavailable wrapping the cause, got %v", err)
	}
	if storage.sets != 0 {
		t.Fatalf("read error must not write, got %d writes", storage.sets)
	}
}

func TestStoreAddToCart(t *testing.T) {
	st, storage := newTestStore(t)

	if err := st.AddToCart(context.Background(), sampleProduct); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	cart := st.Cart()
	if cart.Len() != 1 || cart.Items[0].Quantity != 1 {
		t.Fatalf("cart = %+v", cart.Items)
	}
	if storage.sets != 1 {
		t.Fatalf("expected 1 write, got %d", storage.sets)
	}
}

func TestStoreAddSameProductTwice(t *testing.T) {
	st, storage := newTestStore(t)
	ctx := context.Background()

	_ = st.AddToCart(ctx, sampleProduct)
	_ = st.AddToCart(ctx, sampleProduct)

	cart := st.Cart()
	if cart.Len() != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("cart = %+v", cart.Items)
	}
	if storage.sets != 2 {
		t.Fatalf("expected 2 writes, got %d", storage.sets)
	}
}

func TestStoreIncreaseAndDecrease(t *testing.T) {
	ctx := context.Background()

	t.Run("increase", func(t *testing.T) {
		st, _ := newTestStore(t)
		_ = st.AddToCart(ctx, sampleProduct)
		_ = st.IncreaseQuantity(ctx, sampleProduct.ID)
		if got := st.Cart().Items[0].Quantity; got != 2 {
			t.Fatalf("quantity = %d", got)
		}
	})

	t.Run("decrease", func(t *testing.T) {
		st, _ := newTestStore(t)
		_ = st.AddToCart(ctx, sampleProduct)
		_ = st.AddToCart(ctx, sampleProduct)
		_ = st.DecreaseQuantity(ctx, sampleProduct.ID)
		if got := st.Cart().Items[0].Quantity; got != 1 {
			t.Fatalf("quantity = %d", got)
		}
	})

	t.Run("decrease below one removes", func(t *testing.T) {
		st, _ := newTestStore(t)
		_ = st.AddToCart(ctx, sampleProduct)
		_ = st.DecreaseQuantity(ctx, sampleProduct.ID)
		if got := st.Cart().Len(); got != 0 {
			t.Fatalf("len = %d", got)
		}
	})

	t.Run("no-op still persists", func(t *testing.T) {
		st, storage := newTestStore(t)
		_ = st.IncreaseQuantity(ctx, 404)
		_ = st.DecreaseQuantity(ctx, 404)
		if storage.sets != 2 {
			t.Fatalf("expected 2 writes, got %d", storage.sets)
		}
		if got := storage.persisted(t); len(got) != 0 {
			t.Fatalf("persisted %+v", got)
		}
	})
}

func TestStoreTotals(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	_ = st.AddToCart(ctx, sampleProduct)
	_ = st.AddToCart(ctx, sampleProduct)
	_ = st.AddToCart(ctx, product2)

	if got := st.GetTotalCartItems(); got != 3 {
		t.Fatalf("GetTotalCartItems = %d, want 3", got)
	}
	if got := st.CalculateTotal(); got != 250.0 {
		t.Fatalf("CalculateTotal = %v, want 250.00", got)
	}
}

func TestStorePersistenceRoundTrip(t *testing.T) {
	st, storage := newTestStore(t)
	ctx := context.Background()

	ops := []struct {
		name string
		run  func() error
	}{
		{"add 1", func() error { return st.AddToCart(ctx, sampleProduct) }},
		{"add 3", func() error { return st.AddToCart(ctx, product2) }},
		{"increase 1", func() error { return st.IncreaseQuantity(ctx, 1) }},
		{"decrease 3", func() error { return st.DecreaseQuantity(ctx, 3) }},
		{"decrease 1", func() error { return st.DecreaseQuantity(ctx, 1) }},
	}
	for _, op := range ops {
		if err := op.run(); err != nil {
			t.Fatalf("%s: %v", op.name, err)
		}
		got := domain.Cart{Items: storage.persisted(t)}
		want := st.Cart()
		if len(want.Items) == 0 && len(got.Items) == 0 {
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("after %s storage differs from memory (-mem +stored):\n%s", op.name, diff)
		}
	}

	restored, err := NewStore(ctx, storage, logger.Discard())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if diff := cmp.Diff(st.Cart(), restored.Cart()); diff != "" {
		t.Fatalf("restored cart differs (-want +got):\n%s", diff)
	}
}

func TestStoreWriteFailureKeepsMemoryConsistent(t *testing.T) {
	st, storage := newTestStore(t)
	storage.setErr = errors.New("disk full")

	err := st.AddToCart(context.Background(), sampleProduct)
	if err == nil {
		t.Fatalf("expected write error")
	}
	if !errors.Is(err, storage.setErr) {
		t.Fatalf("error does not wrap cause: %v", err)
	}
	if got := st.Cart(); got.Len() != 1 || got.Items[0].Quantity != 1 {
		t.Fatalf("in-memory cart = %+v", got.Items)
	}
}

func TestStoreSubscribe(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	var seen []int
	unsubscribe := st.Subscribe(func(c domain.Cart) { seen = append(seen, c.TotalItems()) })

	_ = st.AddToCart(ctx, sampleProduct)
	_ = st.AddToCart(ctx, product2)
	_ = st.DecreaseQuantity(ctx, sampleProduct.ID)

	unsubscribe()
	_ = st.AddToCart(ctx, sampleProduct)

	if diff := cmp.Diff([]int{1, 2, 1}, seen); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreConcurrentAdds(t *testing.T) {
	st, storage := newTestStore(t)
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.AddToCart(ctx, sampleProduct)
		}()
	}
	wg.Wait()

	if got := st.Cart(); got.Len() != 1 || got.Items[0].Quantity != n {
		t.Fatalf("cart = %+v", got.Items)
	}
	if got := storage.persisted(t); got[0].Quantity != n {
		t.Fatalf("persisted quantity = %d", got[0].Quantity)
	}
}
