package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// productInput is a create or partial update request. Each *Set flag tells
// whether the field was sent at all.
type productInput struct {
	Name           string
	NameSet        bool
	Description    string
	DescriptionSet bool
	Price          decimal.Decimal
	PriceSet       bool
	OldPrice       *decimal.Decimal
	OldPriceSet    bool
	CategoryID     string
	CategoryIDSet  bool
	ImageURL       string
	ImageURLSet    bool
	InStock        bool
	InStockSet     bool
	IsFeatured     bool
	IsFeaturedSet  bool
	IsOnSale       bool
	IsOnSaleSet    bool
	RemoveImage    bool
	Image          *multipart.FileHeader
}

type productJSONRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	OldPrice    *decimal.Decimal `json:"oldPrice"`
	CategoryID  *string          `json:"categoryId"`
	ImageURL    *string          `json:"imageUrl"`
	InStock     *bool            `json:"inStock"`
	IsFeatured  *bool            `json:"isFeatured"`
	IsOnSale    *bool            `json:"isOnSale"`
	RemoveImage bool             `json:"removeImage"`
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data")
}

// lastPostForm returns the last value sent for key, so a checkbox paired with
// a hidden fallback field resolves to the checkbox.
func lastPostForm(c *gin.Context, key string) (string, bool) {
	values, ok := c.GetPostFormArray(key)
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

func parseMultipartProductRequest(c *gin.Context) (productInput, error) {
	if err := c.Request.ParseMultipartForm(8 << 20); err != nil {
		return productInput{}, err
	}

	input := productInput{}

	if value, ok := lastPostForm(c, "name"); ok {
		input.Name = strings.TrimSpace(value)
		input.NameSet = true
	}
	if value, ok := lastPostForm(c, "description"); ok {
		input.Description = strings.TrimSpace(value)
		input.DescriptionSet = true
	}
	if value, ok := lastPostForm(c, "categoryId"); ok {
		input.CategoryID = strings.TrimSpace(value)
		input.CategoryIDSet = true
	}
	if value, ok := lastPostForm(c, "imageUrl"); ok {
		input.ImageURL = strings.TrimSpace(value)
		input.ImageURLSet = true
	}

	if value, ok := lastPostForm(c, "price"); ok {
		parsed, err := parseMoney("price", value)
		if err != nil {
			return productInput{}, err
		}
		input.Price = parsed
		input.PriceSet = true
	}
	if value, ok := lastPostForm(c, "oldPrice"); ok {
		input.OldPriceSet = true
		if strings.TrimSpace(value) != "" {
			parsed, err := parseMoney("oldPrice", value)
			if err != nil {
				return productInput{}, err
			}
			input.OldPrice = &parsed
		}
	}

	for _, field := range []struct {
		key   string
		value *bool
		set   *bool
	}{
		{"inStock", &input.InStock, &input.InStockSet},
		{"isFeatured", &input.IsFeatured, &input.IsFeaturedSet},
		{"isOnSale", &input.IsOnSale, &input.IsOnSaleSet},
		{"removeImage", &input.RemoveImage, nil},
	} {
		value, ok := lastPostForm(c, field.key)
		if !ok {
			continue
		}
		parsed, err := parseBoolValue(value)
		if err != nil {
			return productInput{}, fmt.Errorf("%s must be a boolean", field.key)
		}
		*field.value = parsed
		if field.set != nil {
			*field.set = true
		}
	}

	file, err := c.FormFile("image")
	switch {
	case err == nil:
		input.Image = file
	case errors.Is(err, http.ErrMissingFile):
	default:
		return productInput{}, err
	}

	return input, nil
}

func parseJSONProductRequest(c *gin.Context) (productInput, error) {
	var req productJSONRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return productInput{}, err
	}

	input := productInput{RemoveImage: req.RemoveImage}
	if req.Name != nil {
		input.Name, input.NameSet = strings.TrimSpace(*req.Name), true
	}
	if req.Description != nil {
		input.Description, input.DescriptionSet = strings.TrimSpace(*req.Description), true
	}
	if req.Price != nil {
		input.Price, input.PriceSet = *req.Price, true
	}
	if req.OldPrice != nil {
		input.OldPrice, input.OldPriceSet = req.OldPrice, true
	}
	if req.CategoryID != nil {
		input.CategoryID, input.CategoryIDSet = strings.TrimSpace(*req.CategoryID), true
	}
	if req.ImageURL != nil {
		input.ImageURL, input.ImageURLSet = strings.TrimSpace(*req.ImageURL), true
	}
	if req.InStock != nil {
		input.InStock, input.InStockSet = *req.InStock, true
	}
	if req.IsFeatured != nil {
		input.IsFeatured, input.IsFeaturedSet = *req.IsFeatured, true
	}
	if req.IsOnSale != nil {
		input.IsOnSale, input.IsOnSaleSet = *req.IsOnSale, true
	}
	return input, nil
}

func parseMoney(field, value string) (decimal.Decimal, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", field)
	}
	if parsed.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must be zero or greater", field)
	}
	return parsed.Round(2), nil
}

func parseBoolValue(value string) (bool, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "on" {
		return true, nil
	}
	return strconv.ParseBool(value)
}
