package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cantinho/internal/models"
	"cantinho/internal/orders"
	"cantinho/internal/store"
)

type OrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=pending paid completed cancelled"`
}

func GetAdminOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		page, limit, _, err := parsePaginationParams(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		list, total, err := svc.List(c.Request.Context(), store.OrderFilter{
			Status:       models.OrderStatus(strings.TrimSpace(c.Query("status"))),
			CustomerName: strings.TrimSpace(c.Query("customerName")),
			Offset:       (page - 1) * limit,
			Limit:        limit,
		})
		if err != nil {
			respondServiceError(c, route, err, "orders not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data":       list,
			"pagination": paginationMeta(page, limit, total),
		})
	}
}

func GetAdminOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/:id"
		defer handlePanic(c, route)

		order, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err, "order not found")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func UpdateOrderStatus(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		var req OrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		order, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			respondServiceError(c, route, err, "order not found")
			return
		}

		log.Printf("[%s] order %s is now %s", route, order.ID, order.Status)
		c.JSON(http.StatusOK, order)
	}
}

func DeleteOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders/:id"
		defer handlePanic(c, route)

		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondServiceError(c, route, err, "order not found")
			return
		}

		c.Status(http.StatusNoContent)
	}
}

/*
DELETE /admin/api/orders?olderThanDays=30
DELETE /admin/api/orders?all=true
- Pending orders are never removed
*/
func PurgeOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders"
		defer handlePanic(c, route)

		all := strings.EqualFold(c.Query("all"), "true")
		days := 0
		if !all {
			raw := strings.TrimSpace(c.Query("olderThanDays"))
			if raw == "" {
				respondWithError(c, http.StatusBadRequest, route, "olderThanDays or all=true required")
				return
			}
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "olderThanDays must be a number")
				return
			}
			days = parsed
		}

		deleted, err := svc.PurgeOlderThan(c.Request.Context(), days, all)
		if err != nil {
			respondServiceError(c, route, err, "orders not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
	}
}

func GetDashboard(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/dashboard"
		defer handlePanic(c, route)

		stats, err := svc.Stats(c.Request.Context())
		if err != nil {
			respondServiceError(c, route, err, "stats not found")
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
