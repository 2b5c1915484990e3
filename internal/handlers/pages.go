package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Page renders one of the embedded HTML shells, e.g. Page("cardapio.html", "Cardápio", merchant).
func Page(name, title, merchant string) gin.HandlerFunc {
	page := strings.TrimSuffix(name, ".html")
	admin := strings.HasPrefix(page, "admin")
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, gin.H{
			"Title":    title,
			"Merchant": merchant,
			"Page":     page,
			"Admin":    admin,
		})
	}
}
