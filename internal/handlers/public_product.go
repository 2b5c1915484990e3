package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cantinho/internal/store"
)

func listProducts(c *gin.Context, route string, st store.ProductStore, filter store.ProductFilter) {
	page, limit, paged, err := parsePaginationParams(c)
	if err != nil {
		respondWithError(c, http.StatusBadRequest, route, err.Error())
		return
	}
	if paged {
		filter.Offset = (page - 1) * limit
		filter.Limit = limit
	}

	products, total, err := st.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, route, err, "products not found")
		return
	}

	log.Printf("[%s] returning %d of %d products", route, len(products), total)
	if !paged {
		c.JSON(http.StatusOK, products)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":       products,
		"pagination": paginationMeta(page, limit, total),
	})
}

/*
GET /products
- Only available products
- ?category=<slug> ?search=<text> ?page ?limit
*/
func GetProducts(st store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		listProducts(c, route, st, store.ProductFilter{
			CategorySlug:  strings.TrimSpace(c.Query("category")),
			Search:        strings.TrimSpace(c.Query("search")),
			OnlyAvailable: true,
		})
	}
}

func GetFeaturedProducts(st store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/featured"
		defer handlePanic(c, route)

		featured := true
		listProducts(c, route, st, store.ProductFilter{OnlyAvailable: true, Featured: &featured})
	}
}

func GetPromotionProducts(st store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/promotions"
		defer handlePanic(c, route)

		onSale := true
		listProducts(c, route, st, store.ProductFilter{OnlyAvailable: true, OnSale: &onSale})
	}
}

func GetProduct(st store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		product, err := st.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err, "product not found")
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
