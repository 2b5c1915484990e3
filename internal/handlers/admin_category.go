package handlers

import (
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

type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required,max=80"`
	Description string `json:"description" binding:"max=500"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=80"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

/*
GET /admin/api/categories
*/
func GetAllCategories(st store.CategoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/categories"
		defer handlePanic(c, route)

		categories, err := st.ListCategories(c.Request.Context())
		if err != nil {
			respondServiceError(c, route, err, "categories not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": categories,
		})
	}
}

/*
POST /admin/api/categories
- Slug comes from the name and must be unique
*/
func CreateCategory(st store.CategoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/categories"
		defer handlePanic(c, route)

		var req CategoryCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		slug := models.Slugify(name)
		if slug == "" {
			respondWithError(c, http.StatusBadRequest, route, "name must contain letters or digits")
			return
		}

		category := models.Category{
			ID:          uuid.NewString(),
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			Slug:        slug,
			CreatedAt:   time.Now().UTC(),
		}

		if err := st.CreateCategory(c.Request.Context(), &category); err != nil {
			if errors.Is(err, store.ErrConflict) {
				respondWithError(c, http.StatusConflict, route, "category already exists")
				return
			}
			respondServiceError(c, route, err, "category not found")
			return
		}

		log.Printf("[%s] created category %s (%s)", route, category.ID, category.Slug)
		c.JSON(http.StatusCreated, category)
	}
}

/*
PUT /admin/api/categories/:id
*/
func UpdateCategory(st store.CategoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/categories/:id"
		defer handlePanic(c, route)

		var req CategoryUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		if req.Name == nil && req.Description == nil {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		ctx := c.Request.Context()
		category, err := st.GetCategory(ctx, c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err, "category not found")
			return
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			slug := models.Slugify(name)
			if slug == "" {
				respondWithError(c, http.StatusBadRequest, route, "name must contain letters or digits")
				return
			}
			category.Name = name
			category.Slug = slug
		}
		if req.Description != nil {
			category.Description = strings.TrimSpace(*req.Description)
		}

		if err := st.UpdateCategory(ctx, category); err != nil {
			if errors.Is(err, store.ErrConflict) {
				respondWithError(c, http.StatusConflict, route, "category already exists")
				return
			}
			respondServiceError(c, route, err, "category not found")
			return
		}

		c.JSON(http.StatusOK, category)
	}
}

/*
DELETE /admin/api/categories/:id
- Refused while live products still use the category
*/
func DeleteCategory(st store.CategoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/categories/:id"
		defer handlePanic(c, route)

		err := st.DeleteCategory(c.Request.Context(), c.Param("id"))
		if errors.Is(err, store.ErrConflict) {
			respondWithError(c, http.StatusConflict, route, "category has products")
			return
		}
		if err != nil {
			respondServiceError(c, route, err, "category not found")
			return
		}

		c.Status(http.StatusNoContent)
	}
}
