// Package cart holds the customer's in-progress selection and the session
// stores it is kept in between requests.
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"cantinho/internal/models"
	"cantinho/internal/store"
)

// Item is a product snapshot with a positive quantity.
type Item struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart lists each product at most once, in the order it was first added.
type Cart struct {
	Items []Item `json:"items"`
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.Items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of product in the cart.
func (c *Cart) Add(product models.Product) {
	if i := c.indexOf(product.ID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	c.Items = append(c.Items, Item{Product: product, Quantity: 1})
}

// UpdateQuantity sets the quantity of product to n. n <= 0 removes it and an
// absent product is inserted with quantity n.
func (c *Cart) UpdateQuantity(product models.Product, n int) {
	if n <= 0 {
		c.Remove(product.ID)
		return
	}
	if i := c.indexOf(product.ID); i >= 0 {
		c.Items[i].Quantity = n
		return
	}
	c.Items = append(c.Items, Item{Product: product, Quantity: n})
}

func (c *Cart) Remove(productID string) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

func (c *Cart) Clear() {
	c.Items = nil
}

// Quantity returns how many units of productID are in the cart.
func (c Cart) Quantity(productID string) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Clone returns a copy that shares no slices with c.
func (c Cart) Clone() Cart {
	if c.Items == nil {
		return Cart{}
	}
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	for i := range items {
		if old := items[i].Product.OldPrice; old != nil {
			v := *old
			items[i].Product.OldPrice = &v
		}
	}
	return Cart{Items: items}
}

// Catalog is where a cart reads current product records from.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// Refresh replaces every product snapshot with the current record from
// catalog and drops lines whose product no longer exists. It reports whether
// the cart changed.
func (c *Cart) Refresh(ctx context.Context, catalog Catalog) (bool, error) {
	changed := false
	kept := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		current, err := catalog.GetProduct(ctx, item.Product.ID)
		if errors.Is(err, store.ErrNotFound) {
			changed = true
			continue
		}
		if err != nil {
			return false, err
		}
		if !sameSnapshot(item.Product, *current) {
			changed = true
		}
		item.Product = *current
		kept = append(kept, item)
	}
	c.Items = kept
	if len(c.Items) == 0 {
		c.Items = nil
	}
	return changed, nil
}

func sameSnapshot(a, b models.Product) bool {
	return a.Name == b.Name &&
		a.Price.Equal(b.Price) &&
		a.InStock == b.InStock &&
		a.IsOnSale == b.IsOnSale &&
		a.ImageURL == b.ImageURL
}

// Unavailable returns the first line whose product is out of stock.
func (c Cart) Unavailable() (Item, bool) {
	for _, item := range c.Items {
		if !item.Product.InStock {
			return item, true
		}
	}
	return Item{}, false
}
