package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cantinho/internal/store"
)

func Health(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /health"

		if err := st.Ping(c.Request.Context()); err != nil {
			log.Printf("[%s] [ERROR] store ping failed: %v", route, err)
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func GetCategories(st store.CategoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, route)

		categories, err := st.ListCategories(c.Request.Context())
		if err != nil {
			respondServiceError(c, route, err, "categories not found")
			return
		}

		log.Printf("[%s] returning %d categories", route, len(categories))
		c.JSON(http.StatusOK, categories)
	}
}
