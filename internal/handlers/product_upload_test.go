package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartContext(t *testing.T, fields [][2]string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range fields {
		require.NoError(t, writer.WriteField(f[0], f[1]))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("PUT", "/admin/api/products/1", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestParseMultipartProductRequest_PicksLastIsOnSaleValue(t *testing.T) {
	c := multipartContext(t, [][2]string{
		{"isOnSale", "false"},
		{"isOnSale", "on"},
		{"oldPrice", "99"},
		{"price", "79,90"},
	})

	parsed, err := parseMultipartProductRequest(c)
	require.NoError(t, err)
	assert.True(t, parsed.IsOnSaleSet)
	assert.True(t, parsed.IsOnSale)
	require.True(t, parsed.OldPriceSet)
	require.NotNil(t, parsed.OldPrice)
	assert.True(t, decimal.NewFromInt(99).Equal(*parsed.OldPrice))
	assert.True(t, decimal.RequireFromString("79.90").Equal(parsed.Price))
	assert.False(t, parsed.NameSet)
	assert.Nil(t, parsed.Image)
}

func TestParseMultipartProductRequest_EmptyOldPriceClears(t *testing.T) {
	parsed, err := parseMultipartProductRequest(multipartContext(t, [][2]string{{"oldPrice", ""}}))
	require.NoError(t, err)
	assert.True(t, parsed.OldPriceSet)
	assert.Nil(t, parsed.OldPrice)
}

func TestParseMultipartProductRequest_RejectsBadValues(t *testing.T) {
	_, err := parseMultipartProductRequest(multipartContext(t, [][2]string{{"price", "abc"}}))
	assert.EqualError(t, err, "price must be a number")

	_, err = parseMultipartProductRequest(multipartContext(t, [][2]string{{"price", "-1"}}))
	assert.EqualError(t, err, "price must be zero or greater")

	_, err = parseMultipartProductRequest(multipartContext(t, [][2]string{{"inStock", "maybe"}}))
	assert.EqualError(t, err, "inStock must be a boolean")
}
