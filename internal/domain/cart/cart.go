// Package cart holds the working set of (product, quantity) pairs for a
// single browsing session. State is session-local: one logical writer, no
// cross-session sharing, nothing persisted server-side.
package cart

import (
	"github.com/solarbrone/solar-store/internal/domain/money"
	"github.com/solarbrone/solar-store/internal/domain/product"
)

// Item is a cart line: a product reference and a positive quantity. The
// same product id appears at most once in a cart.
type Item struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart is the session-local cart state store. Totals are derived on read,
// never cached. The zero value is not usable; call New.
type Cart struct {
	// items preserves insertion order so the checkout summary and the
	// provider line items render deterministically.
	items []Item
	index map[string]int // product id -> position in items
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// AddItem inserts the product with quantity 1, or increments the existing
// line's quantity when the product is already present.
func (c *Cart) AddItem(p product.Product) {
	if i, ok := c.index[p.ID]; ok {
		c.items[i].Quantity++
		return
	}
	c.index[p.ID] = len(c.items)
	c.items = append(c.items, Item{Product: p, Quantity: 1})
}

// UpdateQuantity sets the line quantity exactly. A quantity of zero or less
// removes the line. An unknown product id is a no-op.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	if quantity <= 0 {
		c.removeAt(i)
		return
	}
	c.items[i].Quantity = quantity
}

// RemoveItem removes the line for the given product id. Removing an absent
// id is a no-op.
func (c *Cart) RemoveItem(productID string) {
	if i, ok := c.index[productID]; ok {
		c.removeAt(i)
	}
}

// Clear empties the cart. Called after order completion.
func (c *Cart) Clear() {
	c.items = nil
	c.index = make(map[string]int)
}

// Subtotal is the sum of price x quantity over all lines, in minor units.
func (c *Cart) Subtotal() money.Cents {
	var total money.Cents
	for _, it := range c.items {
		total += it.Product.Price.MulQty(it.Quantity)
	}
	return total
}

// TotalItemCount is the sum of quantities over all lines.
func (c *Cart) TotalItemCount() int {
	var n int
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) removeAt(i int) {
	c.items = append(c.items[:i], c.items[i+1:]...)
	// Rebuild positions for the shifted tail.
	c.index = make(map[string]int, len(c.items))
	for j, it := range c.items {
		c.index[it.Product.ID] = j
	}
}
