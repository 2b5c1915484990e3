package handlers

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"cantinho/internal/cart"
	"cantinho/internal/middleware"
	"cantinho/internal/models"
	"cantinho/internal/orders"
	"cantinho/internal/pix"
	"cantinho/internal/store"
)

// CheckoutGuard lets one checkout per cart session run at a time.
type CheckoutGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewCheckoutGuard() *CheckoutGuard {
	return &CheckoutGuard{inFlight: make(map[string]struct{})}
}

// TryAcquire reports false while another checkout holds sessionID.
func (g *CheckoutGuard) TryAcquire(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[sessionID]; busy {
		return false
	}
	g.inFlight[sessionID] = struct{}{}
	return true
}

func (g *CheckoutGuard) Release(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, sessionID)
}

type PixSettings struct {
	Key          string
	MerchantName string
	MerchantCity string
}

type CheckoutRequest struct {
	CustomerName string `json:"customerName" binding:"required,max=120"`
}

func orderResponse(order *models.Order) gin.H {
	return gin.H{
		"order": order,
		"token": order.Token,
	}
}

/*
POST /checkout/pix
- Amount is always the session cart total, never a client value
*/
func CreatePixCharge(st store.ProductStore, carts cart.Store, settings PixSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/pix"
		defer handlePanic(c, route)

		current, ok := loadCart(c, route, st, carts)
		if !ok {
			return
		}
		if current.IsEmpty() {
			respondWithError(c, http.StatusBadRequest, route, "cart is empty")
			return
		}
		if item, unavailable := current.Unavailable(); unavailable {
			log.Printf("[%s] product %s is unavailable", route, item.Product.ID)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "product is unavailable",
				"productId": item.Product.ID,
			})
			return
		}

		charge := pix.Charge{
			Key:          settings.Key,
			MerchantName: settings.MerchantName,
			MerchantCity: settings.MerchantCity,
			Description:  "Pedido",
			Amount:       current.TotalPrice(),
		}

		c.JSON(http.StatusOK, gin.H{
			"pixKey":       charge.Key,
			"merchantName": charge.MerchantName,
			"description":  charge.Description,
			"amount":       charge.Amount.StringFixed(2),
			"payload":      charge.Payload(),
		})
	}
}

// submitCart runs svc.Submit for the session cart under the checkout guard.
func submitCart(c *gin.Context, route string, svc *orders.Service, st store.ProductStore, carts cart.Store, guard *CheckoutGuard, confirm bool) (*models.Order, bool) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, route, err)
		return nil, false
	}

	sessionID := middleware.CartID(c)
	if !guard.TryAcquire(sessionID) {
		respondWithError(c, http.StatusConflict, route, "checkout already in progress")
		return nil, false
	}
	defer guard.Release(sessionID)

	current, ok := loadCart(c, route, st, carts)
	if !ok {
		return nil, false
	}

	ctx := c.Request.Context()
	order, err := svc.Submit(ctx, req.CustomerName, *current)
	if err != nil {
		respondServiceError(c, route, err, "product not found")
		return nil, false
	}

	if !confirm {
		if err := middleware.RememberPendingOrder(c, order.ID); err != nil {
			log.Printf("[%s] [WARN] pending order not kept in session: %v", route, err)
		}
		return order, true
	}

	order, err = svc.ConfirmPayment(ctx, order.Token, order.TokenDate)
	if err != nil {
		respondServiceError(c, route, err, "order not found")
		return nil, false
	}
	finishCheckout(c, route, carts, order)
	return order, true
}

// finishCheckout empties the cart and remembers who paid. Failures here do not
// undo the payment.
func finishCheckout(c *gin.Context, route string, carts cart.Store, order *models.Order) {
	if err := carts.Delete(c.Request.Context(), middleware.CartID(c)); err != nil {
		log.Printf("[%s] [WARN] cart not cleared after order %s: %v", route, order.Token, err)
	}
	if err := middleware.CompleteCheckout(c, order.CustomerName); err != nil {
		log.Printf("[%s] [WARN] customer not remembered: %v", route, err)
	}
}

/*
POST /orders
- Creates a pending order; the cart is kept until payment is confirmed
*/
func SubmitOrder(svc *orders.Service, st store.ProductStore, carts cart.Store, guard *CheckoutGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		order, ok := submitCart(c, route, svc, st, carts, guard, false)
		if !ok {
			return
		}
		c.JSON(http.StatusCreated, orderResponse(order))
	}
}

/*
POST /orders/:token/confirm?date=YYYY-MM-DD
- Only the session that submitted the order gets its cart cleared and the
  customer name remembered
*/
func ConfirmOrderPayment(svc *orders.Service, carts cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/:token/confirm"
		defer handlePanic(c, route)

		order, err := svc.ConfirmPayment(c.Request.Context(), c.Param("token"), c.Query("date"))
		if err != nil {
			respondServiceError(c, route, err, "order not found")
			return
		}

		if order.ID == middleware.PendingOrder(c) {
			finishCheckout(c, route, carts, order)
		}
		c.JSON(http.StatusOK, orderResponse(order))
	}
}

/*
POST /checkout/confirm
- Manual PIX confirmation: submit and mark paid in one call
*/
func ConfirmCheckout(svc *orders.Service, st store.ProductStore, carts cart.Store, guard *CheckoutGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/confirm"
		defer handlePanic(c, route)

		order, ok := submitCart(c, route, svc, st, carts, guard, true)
		if !ok {
			return
		}
		c.JSON(http.StatusCreated, orderResponse(order))
	}
}
