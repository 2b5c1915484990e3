package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var errInvalidPagination = errors.New("page and limit must be positive integers")

// parsePaginationParams reads ?page and ?limit. present is false when the
// caller sent neither, which the storefront treats as "everything".
func parsePaginationParams(c *gin.Context) (page, limit int, present bool, err error) {
	pageStr, limitStr := c.Query("page"), c.Query("limit")
	page, limit = 1, defaultPageLimit

	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			return 0, 0, false, errInvalidPagination
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			return 0, 0, false, errInvalidPagination
		}
		if l > maxPageLimit {
			l = maxPageLimit
		}
		limit = l
	}

	return page, limit, pageStr != "" || limitStr != "", nil
}

func paginationMeta(page, limit int, total int64) gin.H {
	totalPages := int64(0)
	if total > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return gin.H{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": totalPages,
	}
}
