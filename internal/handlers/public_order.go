package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cantinho/internal/middleware"
	"cantinho/internal/models"
	"cantinho/internal/orders"
)

/*
GET /orders/token/:token?date=YYYY-MM-DD
*/
func GetOrderByToken(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/token/:token"
		defer handlePanic(c, route)

		order, err := svc.GetByToken(c.Request.Context(), c.Param("token"), c.Query("date"))
		if err != nil {
			respondServiceError(c, route, err, "order not found")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

/*
GET /orders?customerName=...
- Falls back to the name remembered in the session
- Not an authentication boundary
*/
func GetCustomerOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		name := strings.TrimSpace(c.Query("customerName"))
		if name == "" {
			name = middleware.RememberedCustomer(c)
		}
		if name == "" {
			c.JSON(http.StatusOK, []models.Order{})
			return
		}

		list, err := svc.GetByCustomerName(c.Request.Context(), name)
		if err != nil {
			respondServiceError(c, route, err, "orders not found")
			return
		}
		if list == nil {
			list = []models.Order{}
		}
		c.JSON(http.StatusOK, list)
	}
}
