package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solarbrone/solar-store/internal/domain/money"
	"github.com/solarbrone/solar-store/internal/domain/product"
)

func newTestProduct(id string, price money.Cents) product.Product {
	return product.Product{
		ID:       id,
		Name:     "Kit " + id,
		Slug:     "kit-" + id,
		Price:    price,
		Category: "kits",
	}
}

func TestAddItem_SameProductIncrementsQuantity(t *testing.T) {
	c := New()
	p := newTestProduct("p1", 34900)

	c.AddItem(p)
	c.AddItem(p)

	items := c.Items()
	assert.Len(t, items, 1, "same product id must stay a single line")
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, c.TotalItemCount())
}

func TestSubtotal_DerivedFromLines(t *testing.T) {
	c := New()
	p1 := newTestProduct("p1", 34900)
	p2 := newTestProduct("p2", 5000)

	c.AddItem(p1)
	c.AddItem(p1)
	c.AddItem(p2)
	assert.Equal(t, money.Cents(2*34900+5000), c.Subtotal())

	c.UpdateQuantity("p1", 1)
	assert.Equal(t, money.Cents(34900+5000), c.Subtotal())

	c.RemoveItem("p2")
	assert.Equal(t, money.Cents(34900), c.Subtotal())
}

func TestUpdateQuantity_ZeroAndNegativeRemove(t *testing.T) {
	c := New()
	c.AddItem(newTestProduct("p1", 100))

	c.UpdateQuantity("p1", 0)
	assert.True(t, c.IsEmpty())

	c.AddItem(newTestProduct("p1", 100))
	c.UpdateQuantity("p1", -3)
	assert.True(t, c.IsEmpty())
}

func TestUpdateQuantity_SetsExactly(t *testing.T) {
	c := New()
	c.AddItem(newTestProduct("p1", 100))

	c.UpdateQuantity("p1", 5)
	assert.Equal(t, 5, c.Items()[0].Quantity)

	// Unknown id is a no-op.
	c.UpdateQuantity("missing", 3)
	assert.Len(t, c.Items(), 1)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	c := New()
	c.AddItem(newTestProduct("p1", 100))

	c.RemoveItem("p1")
	c.RemoveItem("p1")
	c.RemoveItem("never-added")
	assert.True(t, c.IsEmpty())
}

func TestClear(t *testing.T) {
	c := New()
	c.AddItem(newTestProduct("p1", 100))
	c.AddItem(newTestProduct("p2", 200))

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, money.Cents(0), c.Subtotal())
	assert.Equal(t, 0, c.TotalItemCount())
}

func TestSubtotal_NeverNegative(t *testing.T) {
	c := New()
	for _, ops := range [][]func(){
		{func() { c.AddItem(newTestProduct("a", 100)) }},
		{func() { c.UpdateQuantity("a", 7) }},
		{func() { c.RemoveItem("a") }},
		{func() { c.UpdateQuantity("gone", -1) }},
	} {
		for _, op := range ops {
			op()
			assert.GreaterOrEqual(t, int64(c.Subtotal()), int64(0))
		}
	}
}

func TestItems_PreservesInsertionOrder(t *testing.T) {
	c := New()
	c.AddItem(newTestProduct("p1", 100))
	c.AddItem(newTestProduct("p2", 200))
	c.AddItem(newTestProduct("p3", 300))
	c.RemoveItem("p2")
	c.AddItem(newTestProduct("p1", 100))

	items := c.Items()
	assert.Equal(t, []string{"p1", "p3"}, []string{items[0].Product.ID, items[1].Product.ID})
	assert.Equal(t, 2, items[0].Quantity)
}
