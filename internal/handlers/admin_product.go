package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cantinho/internal/models"
	"cantinho/internal/store"
)

const maxProductNameLength = 120

func sanitizeLogValue(value string, max int) string {
	value = strings.ReplaceAll(strings.TrimSpace(value), "\n", " ")
	if len(value) > max {
		return value[:max] + "..."
	}
	return value
}

func respondProductInputError(c *gin.Context, route string, err error) {
	var imgErr imageError
	if errors.As(err, &imgErr) {
		respondWithError(c, http.StatusBadRequest, route, imgErr.Error())
		return
	}
	respondWithError(c, http.StatusBadRequest, route, err.Error())
}

func ensureCategoryExists(ctx context.Context, st store.CategoryStore, id string) error {
	if id == "" {
		return errors.New("categoryId required")
	}
	if _, err := st.GetCategory(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.New("category not found")
		}
		return err
	}
	return nil
}

/* =======================
   GET (ADMIN) – LIST
======================= */

func GetAllProducts(st store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, route)

		page, limit, _, err := parsePaginationParams(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		products, total, err := st.ListProducts(c.Request.Context(), store.ProductFilter{
			CategoryID: strings.TrimSpace(c.Query("category")),
			Search:     strings.TrimSpace(c.Query("search")),
			Offset:     (page - 1) * limit,
			Limit:      limit,
		})
		if err != nil {
			respondServiceError(c, route, err, "products not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data":       products,
			"pagination": paginationMeta(page, limit, total),
		})
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(st store.Store, uploads *Uploads) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		if !isMultipart(c) {
			respondWithError(c, http.StatusUnsupportedMediaType, route, "multipart/form-data required")
			return
		}

		input, err := parseMultipartProductRequest(c)
		if err != nil {
			respondProductInputError(c, route, err)
			return
		}

		if !input.NameSet || input.Name == "" {
			respondWithError(c, http.StatusBadRequest, route, "name required")
			return
		}
		if len([]rune(input.Name)) > maxProductNameLength {
			respondWithError(c, http.StatusBadRequest, route, "name is too long")
			return
		}
		if !input.PriceSet {
			respondWithError(c, http.StatusBadRequest, route, "price required")
			return
		}

		oldPrice := input.OldPrice
		if !input.IsOnSale {
			oldPrice = nil
		}
		if err := validateSaleFields(input.Price, input.IsOnSale, oldPrice); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx := c.Request.Context()
		if err := ensureCategoryExists(ctx, st, input.CategoryID); err != nil {
			respondProductInputError(c, route, err)
			return
		}

		imageURL := input.ImageURL
		if input.Image != nil {
			saved, err := uploads.saveImage(input.Image)
			if err != nil {
				respondProductInputError(c, route, err)
				return
			}
			imageURL = saved
		}

		inStock := true
		if input.InStockSet {
			inStock = input.InStock
		}

		now := time.Now().UTC()
		product := models.Product{
			ID:          uuid.NewString(),
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			OldPrice:    oldPrice,
			CategoryID:  input.CategoryID,
			ImageURL:    imageURL,
			InStock:     inStock,
			IsFeatured:  input.IsFeatured,
			IsOnSale:    input.IsOnSale,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := st.CreateProduct(ctx, &product); err != nil {
			uploads.discardUpload(route, imageURL)
			respondServiceError(c, route, err, "product not found")
			return
		}

		log.Printf("[%s] created product %s (%s)", route, product.ID, sanitizeLogValue(product.Name, 60))
		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE
======================= */

// UpdateProduct accepts multipart (with an optional new image) or JSON and
// only touches the fields that were sent.
func UpdateProduct(st store.Store, uploads *Uploads) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		var (
			input productInput
			err   error
		)
		if isMultipart(c) {
			input, err = parseMultipartProductRequest(c)
		} else {
			input, err = parseJSONProductRequest(c)
		}
		if err != nil {
			respondProductInputError(c, route, err)
			return
		}

		ctx := c.Request.Context()
		existing, err := st.GetProduct(ctx, c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err, "product not found")
			return
		}
		updated := *existing

		if input.NameSet {
			if input.Name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			if len([]rune(input.Name)) > maxProductNameLength {
				respondWithError(c, http.StatusBadRequest, route, "name is too long")
				return
			}
			updated.Name = input.Name
		}
		if input.DescriptionSet {
			updated.Description = input.Description
		}
		if input.CategoryIDSet && input.CategoryID != existing.CategoryID {
			if err := ensureCategoryExists(ctx, st, input.CategoryID); err != nil {
				respondProductInputError(c, route, err)
				return
			}
			updated.CategoryID = input.CategoryID
		}
		if input.InStockSet {
			updated.InStock = input.InStock
		}
		if input.IsFeaturedSet {
			updated.IsFeatured = input.IsFeatured
		}

		sale := saleUpdateInput{OldPrice: input.OldPrice, OldPriceSet: input.OldPriceSet}
		if input.PriceSet {
			sale.Price = &input.Price
		}
		if input.IsOnSaleSet {
			sale.IsOnSale = &input.IsOnSale
		}
		pricing, err := resolveSaleUpdate(*existing, sale)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		updated.Price = pricing.Price
		updated.IsOnSale = pricing.IsOnSale
		updated.OldPrice = pricing.OldPrice

		switch {
		case input.Image != nil:
			saved, err := uploads.saveImage(input.Image)
			if err != nil {
				respondProductInputError(c, route, err)
				return
			}
			updated.ImageURL = saved
		case input.RemoveImage:
			updated.ImageURL = ""
		case input.ImageURLSet:
			updated.ImageURL = input.ImageURL
		}

		updated.UpdatedAt = time.Now().UTC()
		if err := st.UpdateProduct(ctx, &updated); err != nil {
			if updated.ImageURL != existing.ImageURL {
				uploads.discardUpload(route, updated.ImageURL)
			}
			respondServiceError(c, route, err, "product not found")
			return
		}

		if updated.ImageURL != existing.ImageURL {
			uploads.discardUpload(route, existing.ImageURL)
		}

		log.Printf("[%s] updated product %s", route, updated.ID)
		c.JSON(http.StatusOK, updated)
	}
}

/* =======================
   DELETE
======================= */

func DeleteProduct(st store.ProductStore, uploads *Uploads) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		previous, err := st.DeleteProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err, "product not found")
			return
		}

		uploads.discardUpload(route, previous.ImageURL)
		log.Printf("[%s] soft-deleted product %s", route, previous.ID)
		c.Status(http.StatusNoContent)
	}
}
