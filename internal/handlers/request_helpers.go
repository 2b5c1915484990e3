package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"cantinho/internal/orders"
	"cantinho/internal/store"
	"cantinho/internal/token"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func respondValidationError(c *gin.Context, route string, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "min", "gte":
				details = append(details, fmt.Sprintf("%s must be at least %s", field, fieldError.Param()))
			case "max", "lte":
				details = append(details, fmt.Sprintf("%s must be at most %s", field, fieldError.Param()))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		log.Printf("[%s] returning error %d: validation failed %v", route, http.StatusBadRequest, details)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	log.Printf("[%s] returning error %d: invalid body: %v", route, http.StatusBadRequest, err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// respondServiceError maps store and service errors onto HTTP statuses.
// notFound is the message used for store.ErrNotFound.
func respondServiceError(c *gin.Context, route string, err error, notFound string) {
	var (
		validationErr  *orders.ValidationError
		unavailableErr *orders.ProductUnavailableError
		transitionErr  *orders.InvalidTransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   validationErr.Message,
			"details": []string{validationErr.Error()},
		})
		log.Printf("[%s] returning error %d: %v", route, http.StatusBadRequest, err)
	case errors.As(err, &unavailableErr):
		log.Printf("[%s] returning error %d: %v", route, http.StatusBadRequest, err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     unavailableErr.Error(),
			"productId": unavailableErr.ProductID,
		})
	case errors.As(err, &transitionErr):
		respondWithError(c, http.StatusConflict, route, transitionErr.Error())
	case errors.Is(err, store.ErrNotFound):
		respondWithError(c, http.StatusNotFound, route, notFound)
	case errors.Is(err, store.ErrConflict):
		respondWithError(c, http.StatusConflict, route, "conflicting update, reload and try again")
	case errors.Is(err, token.ErrAllocationExhausted):
		log.Printf("[%s] [ERROR] %v", route, err)
		respondWithError(c, http.StatusServiceUnavailable, route, "could not generate an order token, please try again")
	case errors.Is(err, context.DeadlineExceeded):
		respondWithError(c, http.StatusGatewayTimeout, route, "request timed out")
	default:
		log.Printf("[%s] [ERROR] %v", route, err)
		respondWithError(c, http.StatusInternalServerError, route, "db error")
	}
}
