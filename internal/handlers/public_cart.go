package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cantinho/internal/cart"
	"cantinho/internal/middleware"
	"cantinho/internal/models"
	"cantinho/internal/store"
)

type cartLine struct {
	Product  models.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	Items      []cartLine      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func newCartResponse(c *cart.Cart) cartResponse {
	lines := make([]cartLine, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, cartLine{
			Product:  item.Product,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal(),
		})
	}
	return cartResponse{
		Items:      lines,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}

type CartAddRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type CartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// availableProduct loads a product a customer may put in the cart.
func availableProduct(c *gin.Context, route string, st store.ProductStore, id string) (*models.Product, bool) {
	product, err := st.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, route, err, "product not found")
		return nil, false
	}
	if !product.InStock {
		respondWithError(c, http.StatusBadRequest, route, "product is unavailable")
		return nil, false
	}
	return product, true
}

// loadCart reads the session cart and brings its product snapshots up to
// date, so totals always use current prices.
func loadCart(c *gin.Context, route string, st store.ProductStore, carts cart.Store) (*cart.Cart, bool) {
	current, err := carts.Load(c.Request.Context(), middleware.CartID(c))
	if err != nil {
		log.Printf("[%s] [ERROR] cart load failed: %v", route, err)
		respondWithError(c, http.StatusInternalServerError, route, "cart unavailable")
		return nil, false
	}

	changed, err := current.Refresh(c.Request.Context(), st)
	if err != nil {
		respondServiceError(c, route, err, "product not found")
		return nil, false
	}
	if changed && !saveCart(c, route, carts, current) {
		return nil, false
	}
	return current, true
}

func saveCart(c *gin.Context, route string, carts cart.Store, current *cart.Cart) bool {
	if err := carts.Save(c.Request.Context(), middleware.CartID(c), current); err != nil {
		log.Printf("[%s] [ERROR] cart save failed: %v", route, err)
		respondWithError(c, http.StatusInternalServerError, route, "cart unavailable")
		return false
	}
	return true
}

func GetCart(st store.ProductStore, carts cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		current, ok := loadCart(c, route, st, carts)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, newCartResponse(current))
	}
}

func AddCartItem(st store.ProductStore, carts cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		var req CartAddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		product, ok := availableProduct(c, route, st, req.ProductID)
		if !ok {
			return
		}
		current, ok := loadCart(c, route, st, carts)
		if !ok {
			return
		}

		current.Add(*product)
		if !saveCart(c, route, carts, current) {
			return
		}
		c.JSON(http.StatusOK, newCartResponse(current))
	}
}

/*
PUT /cart/items/:productId
- quantity <= 0 removes the line
*/
func UpdateCartItem(st store.ProductStore, carts cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/items/:productId"
		defer handlePanic(c, route)

		var req CartQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		current, ok := loadCart(c, route, st, carts)
		if !ok {
			return
		}

		productID := c.Param("productId")
		if *req.Quantity <= 0 {
			current.Remove(productID)
		} else {
			product, ok := availableProduct(c, route, st, productID)
			if !ok {
				return
			}
			current.UpdateQuantity(*product, *req.Quantity)
		}

		if !saveCart(c, route, carts, current) {
			return
		}
		c.JSON(http.StatusOK, newCartResponse(current))
	}
}

func RemoveCartItem(st store.ProductStore, carts cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items/:productId"
		defer handlePanic(c, route)

		current, ok := loadCart(c, route, st, carts)
		if !ok {
			return
		}
		current.Remove(c.Param("productId"))
		if !saveCart(c, route, carts, current) {
			return
		}
		c.JSON(http.StatusOK, newCartResponse(current))
	}
}

func ClearCart(carts cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		if err := carts.Delete(c.Request.Context(), middleware.CartID(c)); err != nil {
			log.Printf("[%s] [ERROR] cart delete failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "cart unavailable")
			return
		}
		c.JSON(http.StatusOK, newCartResponse(&cart.Cart{}))
	}
}

// EndCartSession drops the stored cart and the session cookie.
func EndCartSession(carts cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/session"
		defer handlePanic(c, route)

		if err := carts.Delete(c.Request.Context(), middleware.CartID(c)); err != nil {
			log.Printf("[%s] [WARN] cart delete failed: %v", route, err)
		}
		if err := middleware.EndSession(c); err != nil {
			log.Printf("[%s] [ERROR] session end failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "session error")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
