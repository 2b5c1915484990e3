package orders_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cantinho/internal/cart"
	"cantinho/internal/database"
	"cantinho/internal/models"
	"cantinho/internal/orders"
	"cantinho/internal/store"
	"cantinho/internal/store/sqlstore"
	"cantinho/internal/token"
)

var fastRetry = orders.WithRetryPolicy(token.RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond})

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, sqlstore.Migrate(db))

	s := sqlstore.New(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func fixedClock(at time.Time) orders.Option {
	return orders.WithClock(func() time.Time { return at })
}

func seedProduct(t *testing.T, s store.Store, name, price string) models.Product {
	t.Helper()
	ctx := context.Background()

	category := models.Category{ID: uuid.NewString(), Name: "Cat " + name, Slug: models.Slugify("cat " + name + " " + uuid.NewString()[:8])}
	require.NoError(t, s.CreateCategory(ctx, &category))

	now := time.Now().UTC()
	p := models.Product{
		ID:         uuid.NewString(),
		Name:       name,
		Price:      decimal.RequireFromString(price),
		CategoryID: category.ID,
		InStock:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.CreateProduct(ctx, &p))
	return p
}

func cartWith(p models.Product, qty int) cart.Cart {
	var c cart.Cart
	c.UpdateQuantity(p, qty)
	return c
}

// flakyStore fails counter increments or order inserts a given number of
// times. The budget is shared with the transactional copies it hands out.
type flakyStore struct {
	store.Store
	budget *failureBudget
}

type failureBudget struct {
	mu           sync.Mutex
	counterFails int
	createFails  int
	counterCalls int
}

func (f *flakyStore) IncrementDailyCounter(ctx context.Context, day string) (int64, error) {
	f.budget.mu.Lock()
	f.budget.counterCalls++
	fail := f.budget.counterFails > 0
	if fail {
		f.budget.counterFails--
	}
	f.budget.mu.Unlock()

	if fail {
		return 0, errors.New("counter unavailable")
	}
	return f.Store.IncrementDailyCounter(ctx, day)
}

func (f *flakyStore) CreateOrder(ctx context.Context, order *models.Order) error {
	f.budget.mu.Lock()
	fail := f.budget.createFails > 0
	if fail {
		f.budget.createFails--
	}
	f.budget.mu.Unlock()

	if fail {
		return errors.New("insert failed")
	}
	return f.Store.CreateOrder(ctx, order)
}

func (f *flakyStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return f.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		return fn(ctx, &flakyStore{Store: tx, budget: f.budget})
	})
}

func TestSubmitAssignsSequentialTokens(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	at := time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)
	svc := orders.NewService(s, time.UTC, fixedClock(at))

	x := seedProduct(t, s, "X", "10.00")

	first, err := svc.Submit(ctx, "  Ana  ", cartWith(x, 2))
	require.NoError(t, err)
	assert.Equal(t, "A001", first.Token)
	assert.Equal(t, "2024-05-01", first.TokenDate)
	assert.Equal(t, "Ana", first.CustomerName)
	assert.Equal(t, models.StatusPending, first.Status)
	assert.True(t, decimal.RequireFromString("20.00").Equal(first.Total))
	require.Len(t, first.Items, 1)
	assert.Equal(t, 2, first.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("20").Equal(first.Items[0].Subtotal))

	second, err := svc.Submit(ctx, "Bruno", cartWith(x, 1))
	require.NoError(t, err)
	assert.Equal(t, "A002", second.Token)

	stored, err := svc.GetByToken(ctx, "a001", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "X", stored.Items[0].ProductName)
}

func TestTokensResetEachDay(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	x := seedProduct(t, s, "X", "1.00")

	day1 := orders.NewService(s, time.UTC, fixedClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
	day2 := orders.NewService(s, time.UTC, fixedClock(time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)))

	a, err := day1.Submit(ctx, "Ana", cartWith(x, 1))
	require.NoError(t, err)
	b, err := day2.Submit(ctx, "Ana", cartWith(x, 1))
	require.NoError(t, err)

	assert.Equal(t, "A001", a.Token)
	assert.Equal(t, "A001", b.Token)

	newest, err := day2.GetByToken(ctx, "A001", "")
	require.NoError(t, err)
	assert.Equal(t, b.ID, newest.ID)
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	svc := orders.NewService(s, time.UTC)
	x := seedProduct(t, s, "X", "10.00")

	order, err := svc.Submit(ctx, "Ana", cartWith(x, 2))
	require.NoError(t, err)

	paid, err := svc.ConfirmPayment(ctx, order.Token, order.TokenDate)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Status)

	stored, err := svc.GetByToken(ctx, order.Token, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, stored.Status)

	_, err = svc.ConfirmPayment(ctx, order.Token, order.TokenDate)
	var transErr *orders.InvalidTransitionError
	assert.ErrorAs(t, err, &transErr)

	_, err = svc.ConfirmPayment(ctx, "A999", "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmitRetriesAllocationFailures(t *testing.T) {
	ctx := context.Background()
	base := newStore(t)
	x := seedProduct(t, base, "X", "5.00")

	flaky := &flakyStore{Store: base, budget: &failureBudget{counterFails: 2}}
	svc := orders.NewService(flaky, time.UTC, fastRetry)

	order, err := svc.Submit(ctx, "Ana", cartWith(x, 1))
	require.NoError(t, err)
	assert.Equal(t, "A001", order.Token)
	assert.Equal(t, 3, flaky.budget.counterCalls)
}

func TestSubmitExhaustedLeavesNoOrder(t *testing.T) {
	ctx := context.Background()
	base := newStore(t)
	x := seedProduct(t, base, "X", "5.00")

	flaky := &flakyStore{Store: base, budget: &failureBudget{counterFails: 3}}
	svc := orders.NewService(flaky, time.UTC, fastRetry)

	_, err := svc.Submit(ctx, "Ana", cartWith(x, 1))
	assert.ErrorIs(t, err, token.ErrAllocationExhausted)

	list, total, err := base.ListOrders(ctx, store.OrderFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestFailedInsertRollsBackToken(t *testing.T) {
	ctx := context.Background()
	base := newStore(t)
	x := seedProduct(t, base, "X", "5.00")

	flaky := &flakyStore{Store: base, budget: &failureBudget{createFails: 1}}
	svc := orders.NewService(flaky, time.UTC, fastRetry)

	_, err := svc.Submit(ctx, "Ana", cartWith(x, 1))
	require.Error(t, err)
	assert.NotErrorIs(t, err, token.ErrAllocationExhausted)
	assert.Equal(t, 1, flaky.budget.counterCalls)

	order, err := svc.Submit(ctx, "Ana", cartWith(x, 1))
	require.NoError(t, err)
	assert.Equal(t, "A001", order.Token)
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	svc := orders.NewService(s, time.UTC)
	x := seedProduct(t, s, "X", "5.00")

	var vErr *orders.ValidationError

	_, err := svc.Submit(ctx, "   ", cartWith(x, 1))
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "customerName", vErr.Field)

	_, err = svc.Submit(ctx, "Ana", cart.Cart{})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "items", vErr.Field)

	long := make([]byte, orders.MaxCustomerNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Submit(ctx, string(long), cartWith(x, 1))
	assert.ErrorAs(t, err, &vErr)
}

func TestSubmitRejectsUnavailableProducts(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	svc := orders.NewService(s, time.UTC)

	soldOut := seedProduct(t, s, "Pastel", "7.00")
	soldOut.InStock = false
	require.NoError(t, s.UpdateProduct(ctx, &soldOut))

	removed := seedProduct(t, s, "Suco", "8.00")
	_, err := s.DeleteProduct(ctx, removed.ID)
	require.NoError(t, err)

	var unavailable *orders.ProductUnavailableError
	_, err = svc.Submit(ctx, "Ana", cartWith(soldOut, 1))
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, soldOut.ID, unavailable.ProductID)

	_, err = svc.Submit(ctx, "Ana", cartWith(removed, 1))
	assert.ErrorAs(t, err, &unavailable)

	n, err := s.IncrementDailyCounter(ctx, svc.Today())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "rejected carts must not consume tokens")
}

func TestOrderLinesAreSnapshots(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	svc := orders.NewService(s, time.UTC)
	x := seedProduct(t, s, "Coxinha", "6.50")

	order, err := svc.Submit(ctx, "Ana", cartWith(x, 2))
	require.NoError(t, err)

	x.Name = "Coxinha Grande"
	x.Price = decimal.RequireFromString("9.00")
	require.NoError(t, s.UpdateProduct(ctx, &x))

	stored, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coxinha", stored.Items[0].ProductName)
	assert.True(t, decimal.RequireFromString("6.50").Equal(stored.Items[0].Price))
	assert.True(t, decimal.RequireFromString("13.00").Equal(stored.Total))
}

func TestSubmitUsesCurrentPrice(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	svc := orders.NewService(s, time.UTC)
	x := seedProduct(t, s, "X", "10.00")
	c := cartWith(x, 1)

	x.Price = decimal.RequireFromString("12.00")
	require.NoError(t, s.UpdateProduct(ctx, &x))

	order, err := svc.Submit(ctx, "Ana", c)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12").Equal(order.Total))
}

func TestConcurrentSubmissionsGetDistinctTokens(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	svc := orders.NewService(s, time.UTC)
	x := seedProduct(t, s, "X", "1.00")

	const n = 20
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		tokens = map[string]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := svc.Submit(ctx, fmt.Sprintf("Cliente %d", i), cartWith(x, 1))
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			tokens[order.Token] = true
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Len(t, tokens, n)
	for i := 1; i <= n; i++ {
		assert.True(t, tokens[token.Format(int64(i))], "missing %s", token.Format(int64(i)))
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	svc := orders.NewService(s, time.UTC)
	x := seedProduct(t, s, "X", "1.00")

	order, err := svc.Submit(ctx, "Ana", cartWith(x, 1))
	require.NoError(t, err)

	var transErr *orders.InvalidTransitionError
	_, err = svc.UpdateStatus(ctx, order.ID, models.StatusCompleted)
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, models.StatusPending, transErr.From)

	var vErr *orders.ValidationError
	_, err = svc.UpdateStatus(ctx, order.ID, "shipped")
	assert.ErrorAs(t, err, &vErr)

	updated, err := svc.UpdateStatus(ctx, order.ID, models.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, updated.Status)

	updated, err = svc.UpdateStatus(ctx, order.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	_, err = svc.UpdateStatus(ctx, order.ID, models.StatusCancelled)
	assert.ErrorAs(t, err, &transErr)

	_, err = svc.UpdateStatus(ctx, uuid.NewString(), models.StatusPaid)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetByCustomerName(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	x := seedProduct(t, s, "X", "1.00")

	early := orders.NewService(s, time.UTC, fixedClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	late := orders.NewService(s, time.UTC, fixedClock(time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)))

	first, err := early.Submit(ctx, "Ana", cartWith(x, 1))
	require.NoError(t, err)
	second, err := late.Submit(ctx, "Ana", cartWith(x, 3))
	require.NoError(t, err)
	_, err = late.Submit(ctx, "Bruno", cartWith(x, 1))
	require.NoError(t, err)

	list, err := late.GetByCustomerName(ctx, "Ana")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Len(t, list[0].Items, 1)

	none, err := late.GetByCustomerName(ctx, "Carla")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetByTokenValidatesDate(t *testing.T) {
	svc := orders.NewService(newStore(t), time.UTC)

	var vErr *orders.ValidationError
	_, err := svc.GetByToken(context.Background(), "A001", "01/05/2024")
	assert.ErrorAs(t, err, &vErr)
	_, err = svc.GetByToken(context.Background(), " ", "")
	assert.ErrorAs(t, err, &vErr)
}

func TestPurgeOlderThan(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	x := seedProduct(t, s, "X", "1.00")
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	old := orders.NewService(s, time.UTC, fixedClock(now.AddDate(0, 0, -40)))
	svc := orders.NewService(s, time.UTC, fixedClock(now))

	oldPaid, err := old.Submit(ctx, "Ana", cartWith(x, 1))
	require.NoError(t, err)
	_, err = old.ConfirmPayment(ctx, oldPaid.Token, oldPaid.TokenDate)
	require.NoError(t, err)
	oldPending, err := old.Submit(ctx, "Ana", cartWith(x, 1))
	require.NoError(t, err)
	recent, err := svc.Submit(ctx, "Ana", cartWith(x, 1))
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(ctx, recent.Token, recent.TokenDate)
	require.NoError(t, err)

	var vErr *orders.ValidationError
	_, err = svc.PurgeOlderThan(ctx, 10, false)
	require.ErrorAs(t, err, &vErr)

	deleted, err := svc.PurgeOlderThan(ctx, 30, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = svc.Get(ctx, oldPaid.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.Get(ctx, oldPending.ID)
	assert.NoError(t, err)

	deleted, err = svc.PurgeOlderThan(ctx, 0, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, total, err := svc.List(ctx, store.OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	svc := orders.NewService(s, time.UTC)
	x := seedProduct(t, s, "X", "1.00")

	order, err := svc.Submit(ctx, "Ana", cartWith(x, 1))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, order.ID))
	assert.ErrorIs(t, svc.Delete(ctx, order.ID), store.ErrNotFound)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	svc := orders.NewService(s, time.UTC)

	coxinha := seedProduct(t, s, "Coxinha", "6.00")
	suco := seedProduct(t, s, "Suco", "8.00")

	paid, err := svc.Submit(ctx, "Ana", cartWith(coxinha, 3))
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(ctx, paid.Token, paid.TokenDate)
	require.NoError(t, err)

	c := cartWith(suco, 1)
	c.Add(coxinha)
	done, err := svc.Submit(ctx, "Bruno", c)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, done.ID, models.StatusPaid)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, done.ID, models.StatusCompleted)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "Carla", cartWith(suco, 5))
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalOrders)
	assert.EqualValues(t, 1, stats.PendingOrders)
	assert.EqualValues(t, 1, stats.OrdersByStatus[models.StatusPaid])
	assert.EqualValues(t, 1, stats.OrdersByStatus[models.StatusCompleted])
	assert.True(t, decimal.RequireFromString("32").Equal(stats.TotalSales), stats.TotalSales.String())
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 2, stats.TotalCategories)
	assert.Len(t, stats.RecentOrders, 3)

	require.Len(t, stats.TopProducts, 2)
	assert.Equal(t, "Coxinha", stats.TopProducts[0].ProductName)
	assert.Equal(t, 4, stats.TopProducts[0].Quantity)
	assert.Equal(t, 1, stats.TopProducts[1].Quantity)
}
