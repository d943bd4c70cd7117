package domain

import (
	catalog "github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

// CartItem is a product plus a quantity. It serializes as the product's
// fields with a "quantity" field alongside.
type CartItem struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// LineTotal is price × quantity, unrounded.
func (it CartItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Cart is an immutable snapshot: transitions return a new Cart and never
// touch the receiver's backing array. At most one item per product id,
// every quantity >= 1.
type Cart struct {
	Items []CartItem
}

// Normalize builds a cart from untrusted items: non-positive quantities are
// dropped and repeated ids are merged into the first occurrence.
func Normalize(items []CartItem) Cart {
	out := make([]CartItem, 0, len(items))
	idx := make(map[int]int, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		if i, ok := idx[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		idx[it.ID] = len(out)
		out = append(out, it)
	}
	return Cart{Items: out}
}

func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

func (c Cart) Len() int { return len(c.Items) }

func (c Cart) Find(productID int) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

// Add increments the matching item or appends p with quantity 1.
func (c Cart) Add(p catalog.Product) Cart {
	next := c.Clone()
	for i := range next.Items {
		if next.Items[i].ID == p.ID {
			next.Items[i].Quantity++
			return next
		}
	}
	next.Items = append(next.Items, CartItem{Product: p, Quantity: 1})
	return next
}

// Increase increments the matching item. Unknown ids leave the cart as is.
func (c Cart) Increase(productID int) Cart {
	next := c.Clone()
	for i := range next.Items {
		if next.Items[i].ID == productID {
			next.Items[i].Quantity++
			break
		}
	}
	return next
}

// Decrease decrements the matching item, removing it instead when the
// quantity would drop below 1. Unknown ids leave the cart as is.
func (c Cart) Decrease(productID int) Cart {
	next := Cart{Items: make([]CartItem, 0, len(c.Items))}
	for _, it := range c.Items {
		if it.ID == productID {
			if it.Quantity <= 1 {
				continue
			}
			it.Quantity--
		}
		next.Items = append(next.Items, it)
	}
	return next
}

// TotalItems sums quantities, not distinct products.
func (c Cart) TotalItems() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// Total is Σ price × quantity rounded half away from zero to 2 places.
func (c Cart) Total() float64 {
	return c.TotalDecimal().InexactFloat64()
}

func (c Cart) TotalDecimal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum.Round(2)
}
