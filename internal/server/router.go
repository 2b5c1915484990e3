package server

import (
	"fmt"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"cantinho/internal/handlers"
	"cantinho/internal/middleware"
	"cantinho/web"
)

// NewRouter wires every route onto a gin engine.
func NewRouter(app *App) (*gin.Engine, error) {
	cfg := app.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	r.SetHTMLTemplate(tmpl)
	r.Static("/public", filepath.Clean(cfg.PublicDir))

	r.GET("/health", handlers.Health(app.Store))

	merchant := cfg.MerchantName
	r.GET("/", handlers.Page("index.html", "Início", merchant))
	r.GET("/cardapio", handlers.Page("cardapio.html", "Cardápio", merchant))
	r.GET("/carrinho", handlers.Page("carrinho.html", "Carrinho", merchant))
	r.GET("/pedidos", handlers.Page("pedidos.html", "Meus pedidos", merchant))
	r.GET("/login", handlers.Page("login.html", "Entrar", merchant))
	r.GET("/admin", handlers.Page("admin.html", "Painel", merchant))
	r.GET("/admin/categorias", handlers.Page("admin_categorias.html", "Categorias", merchant))
	r.GET("/admin/produtos", handlers.Page("admin_produtos.html", "Produtos", merchant))
	r.GET("/admin/pedidos", handlers.Page("admin_pedidos.html", "Pedidos", merchant))

	r.GET("/categories", handlers.GetCategories(app.Store))
	r.GET("/products", handlers.GetProducts(app.Store))
	r.GET("/products/featured", handlers.GetFeaturedProducts(app.Store))
	r.GET("/products/promotions", handlers.GetPromotionProducts(app.Store))
	r.GET("/products/:id", handlers.GetProduct(app.Store))

	shop := r.Group("/")
	shop.Use(middleware.Sessions(cfg.SessionSecret, cfg.IsProduction()), middleware.CartSession())
	{
		shop.GET("/cart", handlers.GetCart(app.Store, app.Carts))
		shop.POST("/cart/items", handlers.AddCartItem(app.Store, app.Carts))
		shop.PUT("/cart/items/:productId", handlers.UpdateCartItem(app.Store, app.Carts))
		shop.DELETE("/cart/items/:productId", handlers.RemoveCartItem(app.Store, app.Carts))
		shop.DELETE("/cart", handlers.ClearCart(app.Carts))
		shop.DELETE("/cart/session", handlers.EndCartSession(app.Carts))

		pix := handlers.PixSettings{Key: cfg.PixKey, MerchantName: cfg.MerchantName, MerchantCity: cfg.MerchantCity}
		shop.POST("/checkout/pix", handlers.CreatePixCharge(app.Store, app.Carts, pix))
		shop.POST("/checkout/confirm", handlers.ConfirmCheckout(app.Orders, app.Store, app.Carts, app.Guard))

		shop.POST("/orders", handlers.SubmitOrder(app.Orders, app.Store, app.Carts, app.Guard))
		shop.POST("/orders/:token/confirm", handlers.ConfirmOrderPayment(app.Orders, app.Carts))
		shop.GET("/orders/token/:token", handlers.GetOrderByToken(app.Orders))
		shop.GET("/orders", handlers.GetCustomerOrders(app.Orders))
	}

	r.POST("/admin/login", handlers.AdminLogin(app.Store, cfg.JWTSecret, cfg.AccessTokenTTL))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))
	{
		admin.GET("/me", handlers.AdminMe())
		admin.GET("/dashboard", handlers.GetDashboard(app.Orders))

		admin.GET("/categories", handlers.GetAllCategories(app.Store))
		admin.POST("/categories", handlers.CreateCategory(app.Store))
		admin.PUT("/categories/:id", handlers.UpdateCategory(app.Store))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(app.Store))

		admin.GET("/products", handlers.GetAllProducts(app.Store))
		admin.POST("/products", handlers.CreateProduct(app.Store, app.Uploads))
		admin.PUT("/products/:id", handlers.UpdateProduct(app.Store, app.Uploads))
		admin.DELETE("/products/:id", handlers.DeleteProduct(app.Store, app.Uploads))

		admin.GET("/orders", handlers.GetAdminOrders(app.Orders))
		admin.GET("/orders/:id", handlers.GetAdminOrder(app.Orders))
		admin.PATCH("/orders/:id/status", handlers.UpdateOrderStatus(app.Orders))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(app.Orders))
		admin.DELETE("/orders", handlers.PurgeOrders(app.Orders))
	}

	return r, nil
}
