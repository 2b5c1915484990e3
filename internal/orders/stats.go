package orders

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"cantinho/internal/models"
	"cantinho/internal/store"
)

const (
	recentOrdersLimit = 5
	topProductsLimit  = 5
)

type ProductSales struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type Stats struct {
	TotalOrders     int64                        `json:"totalOrders"`
	OrdersByStatus  map[models.OrderStatus]int64 `json:"ordersByStatus"`
	PendingOrders   int64                        `json:"pendingOrders"`
	TotalSales      decimal.Decimal              `json:"totalSales"`
	TotalProducts   int64                        `json:"totalProducts"`
	TotalCategories int64                        `json:"totalCategories"`
	RecentOrders    []models.Order               `json:"recentOrders"`
	TopProducts     []ProductSales               `json:"topProducts"`
}

// Stats aggregates the dashboard figures. Sales count paid and completed
// orders only.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	all, total, err := s.store.ListOrders(ctx, store.OrderFilter{})
	if err != nil {
		return nil, err
	}

	_, products, err := s.store.ListProducts(ctx, store.ProductFilter{Limit: 1})
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalOrders: total,
		OrdersByStatus: map[models.OrderStatus]int64{
			models.StatusPending:   0,
			models.StatusPaid:      0,
			models.StatusCompleted: 0,
			models.StatusCancelled: 0,
		},
		TotalSales:      decimal.Zero,
		TotalProducts:   products,
		TotalCategories: int64(len(categories)),
		RecentOrders:    make([]models.Order, 0, recentOrdersLimit),
		TopProducts:     make([]ProductSales, 0, topProductsLimit),
	}

	sold := map[string]*ProductSales{}
	for _, order := range all {
		stats.OrdersByStatus[order.Status]++
		if len(stats.RecentOrders) < recentOrdersLimit {
			stats.RecentOrders = append(stats.RecentOrders, order)
		}
		if order.Status != models.StatusPaid && order.Status != models.StatusCompleted {
			continue
		}

		stats.TotalSales = stats.TotalSales.Add(order.Total)
		for _, item := range order.Items {
			entry, ok := sold[item.ProductID]
			if !ok {
				entry = &ProductSales{ProductID: item.ProductID, ProductName: item.ProductName, Revenue: decimal.Zero}
				sold[item.ProductID] = entry
			}
			entry.Quantity += item.Quantity
			entry.Revenue = entry.Revenue.Add(item.Subtotal)
		}
	}
	stats.PendingOrders = stats.OrdersByStatus[models.StatusPending]

	ranked := make([]ProductSales, 0, len(sold))
	for _, entry := range sold {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].ProductName < ranked[j].ProductName
	})
	if len(ranked) > topProductsLimit {
		ranked = ranked[:topProductsLimit]
	}
	stats.TopProducts = append(stats.TopProducts, ranked...)

	return stats, nil
}
