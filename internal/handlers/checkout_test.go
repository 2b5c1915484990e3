package handlers

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"cantinho/internal/cart"
	"cantinho/internal/models"
)

func TestCheckoutGuardAllowsOneHolderPerSession(t *testing.T) {
	guard := NewCheckoutGuard()

	assert.True(t, guard.TryAcquire("s1"))
	assert.False(t, guard.TryAcquire("s1"))
	assert.True(t, guard.TryAcquire("s2"))

	guard.Release("s1")
	assert.True(t, guard.TryAcquire("s1"))
}

func TestCheckoutGuardUnderContention(t *testing.T) {
	guard := NewCheckoutGuard()

	var (
		wg       sync.WaitGroup
		acquired atomic.Int32
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.TryAcquire("same") {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, acquired.Load())
}

func TestNewCartResponse(t *testing.T) {
	var c cart.Cart
	c.UpdateQuantity(models.Product{ID: "p1", Name: "Pastel", Price: decimal.RequireFromString("8.50")}, 2)
	c.Add(models.Product{ID: "p2", Name: "Caldo de cana", Price: decimal.RequireFromString("6")})

	resp := newCartResponse(&c)

	assert.Len(t, resp.Items, 2)
	assert.True(t, resp.Items[0].Subtotal.Equal(decimal.RequireFromString("17")))
	assert.Equal(t, 3, resp.TotalItems)
	assert.True(t, resp.TotalPrice.Equal(decimal.RequireFromString("23")))

	empty := newCartResponse(&cart.Cart{})
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.TotalItems)
}
