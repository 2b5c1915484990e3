// Package server assembles the stores, services and router from a Config.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cantinho/internal/cart"
	"cantinho/internal/config"
	"cantinho/internal/database"
	"cantinho/internal/handlers"
	"cantinho/internal/models"
	"cantinho/internal/orders"
	"cantinho/internal/store"
	"cantinho/internal/store/mongostore"
	"cantinho/internal/store/sqlstore"
)

// App carries everything the handlers depend on.
type App struct {
	Config  config.Config
	Store   store.Store
	Carts   cart.Store
	Orders  *orders.Service
	Uploads *handlers.Uploads
	Guard   *handlers.CheckoutGuard

	closers []func(context.Context) error
}

// Bootstrap connects the configured backing store and cart store, seeds the
// admin account and builds the order service.
func Bootstrap(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Store: st}
	app.closers = append(app.closers, st.Close)

	app.Carts, err = openCartStore(cfg, app)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	if cfg.AdminEmail != "" {
		if err := SeedAdmin(ctx, st, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			app.Close(ctx)
			return nil, err
		}
	}

	app.Orders = orders.NewService(st, loc)
	app.Uploads = handlers.NewUploads(cfg.PublicDir)
	app.Guard = handlers.NewCheckoutGuard()
	return app, nil
}

// OpenStore connects the store selected by cfg.StoreDriver and prepares its
// schema or indexes.
func OpenStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := database.Connect(cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		log.Println("MongoDB connected to:", cfg.DBName)
		// the unique (tokenDate, token) index is what keeps tokens distinct
		if err := database.EnsureIndexes(client.Database(cfg.DBName)); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return mongostore.New(client, cfg.DBName), nil

	case config.DriverPostgres, config.DriverSQLite:
		open := database.OpenPostgres
		if cfg.StoreDriver == config.DriverSQLite {
			open = database.OpenSQLite
		}
		db, err := open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := sqlstore.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Printf("%s connected", cfg.StoreDriver)
		return sqlstore.New(db), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openCartStore(cfg config.Config, app *App) (cart.Store, error) {
	if cfg.RedisAddr == "" {
		log.Println("[CART] [INFO] REDIS_ADDR not set, carts are kept in memory")
		return cart.NewMemoryStore(), nil
	}

	client, err := database.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func(context.Context) error { return client.Close() })
	return cart.NewRedisStore(client, cfg.CartTTL), nil
}

// SeedAdmin creates the admin account, or resets its password when it exists.
func SeedAdmin(ctx context.Context, st store.AdminStore, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("admin email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.Admin{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if existing, err := st.FindAdminByEmail(ctx, email); err == nil {
		admin.ID = existing.ID
		admin.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if err := st.SaveAdmin(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Printf("[ADMIN] [INFO] admin account %s ready", email)
	return nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.Printf("[SERVER] [WARN] close: %v", err)
		}
	}
	a.closers = nil
}
