package handlers

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cantinho/internal/models"
)

type saleUpdateInput struct {
	Price       *decimal.Decimal
	IsOnSale    *bool
	OldPrice    *decimal.Decimal
	OldPriceSet bool
}

type saleUpdateResult struct {
	Price    decimal.Decimal
	IsOnSale bool
	OldPrice *decimal.Decimal
}

// validateSaleFields checks that a product on sale shows a higher original
// price next to the current one.
func validateSaleFields(price decimal.Decimal, isOnSale bool, oldPrice *decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("price must be zero or greater")
	}
	if !isOnSale {
		return nil
	}
	if oldPrice == nil {
		return fmt.Errorf("oldPrice is required when isOnSale is true")
	}
	if !oldPrice.GreaterThan(price) {
		return fmt.Errorf("oldPrice must be greater than price")
	}
	return nil
}

// resolveSaleUpdate merges a partial update into the stored pricing and
// validates the result. Turning the sale off drops the old price.
func resolveSaleUpdate(existing models.Product, input saleUpdateInput) (saleUpdateResult, error) {
	result := saleUpdateResult{
		Price:    existing.Price,
		IsOnSale: existing.IsOnSale,
		OldPrice: existing.OldPrice,
	}

	if input.Price != nil {
		result.Price = *input.Price
	}
	if input.OldPriceSet {
		result.OldPrice = input.OldPrice
	}
	if input.IsOnSale != nil {
		result.IsOnSale = *input.IsOnSale
		if !*input.IsOnSale {
			result.OldPrice = nil
		}
	}

	if err := validateSaleFields(result.Price, result.IsOnSale, result.OldPrice); err != nil {
		return saleUpdateResult{}, err
	}
	return result, nil
}
