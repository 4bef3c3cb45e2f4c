package router

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/food-ordering-app/cache"
	"github.com/yeremiapane/food-ordering-app/config"
	"github.com/yeremiapane/food-ordering-app/controllers"
	"github.com/yeremiapane/food-ordering-app/hub"
	"github.com/yeremiapane/food-ordering-app/middlewares"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/services"
	"github.com/yeremiapane/food-ordering-app/utils"
	"gorm.io/gorm"
)

// Services adalah semua dependency yang dipakai controller
type Services struct {
	Config    *config.Config
	DB        *gorm.DB
	Hub       *hub.Hub
	Blacklist *utils.TokenBlacklist
	Catalog   *services.CatalogService
	Carts     *services.CartService
	Shipping  *services.ShippingService
	Orders    *services.OrderService
	Reports   *services.ReportService
	Exports   *services.ExportService
}

// NewServices merakit service dari koneksi yang sudah dibuka. notifier boleh nil.
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, h *hub.Hub, notifier services.Notifier) *Services {
	if h == nil {
		h = hub.New()
	}
	if notifier == nil {
		notifier = h
	}
	catalog := services.NewCatalogService(db)
	carts := services.NewCartService(cache.NewCartRepository(rdb, cfg.CartTTL), catalog)
	shipping := services.NewShippingService(db, cfg.DefaultShippingFee, cfg.FreeShippingThreshold)
	return &Services{
		Config:    cfg,
		DB:        db,
		Hub:       h,
		Blacklist: utils.NewTokenBlacklist(rdb),
		Catalog:   catalog,
		Carts:     carts,
		Shipping:  shipping,
		Orders:    services.NewOrderService(db, carts, shipping, notifier),
		Reports:   services.NewReportService(db),
		Exports:   services.NewExportService(cfg.PublicBaseURL),
	}
}

// uploadsOnlyImages: folder uploads hanya melayani file gambar
func uploadsOnlyImages() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			switch strings.ToLower(filepath.Ext(c.Request.URL.Path)) {
			case ".jpg", ".jpeg", ".png", ".gif", ".webp":
			default:
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		c.Next()
	}
}

func SetupRouter(s *Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(s.Config.CORSOrigins))
	r.Use(uploadsOnlyImages())

	r.Static("/uploads", s.Config.UploadDir)

	// Inisialisasi controller
	cartCtrl := controllers.NewCartController(s.Carts, s.Shipping)
	orderCtrl := controllers.NewOrderController(s.Orders, s.Exports)
	shippingCtrl := controllers.NewShippingController(s.Shipping)
	categoryCtrl := controllers.NewCategoryController(s.DB, s.Catalog)
	menuCtrl := controllers.NewMenuController(s.DB, s.Catalog, s.Config.UploadDir)
	userCtrl := controllers.NewUserController(s.DB, s.Blacklist)
	notificationCtrl := controllers.NewNotificationController(s.DB)
	adminCtrl := controllers.NewAdminController(s.Reports, s.Exports)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Katalog
	r.GET("/categories", categoryCtrl.GetActiveCategories)
	r.GET("/menus", menuCtrl.GetAllMenus)
	r.GET("/menus/popular", menuCtrl.GetPopularMenus)
	r.GET("/menus/:food_id", menuCtrl.GetMenuByID)

	// Cart per cookie session
	cart := r.Group("/cart")
	cart.Use(middlewares.CartSession(s.Config.CartTTL))
	{
		cart.GET("", cartCtrl.GetCart)
		cart.GET("/count", cartCtrl.GetCount)
		cart.POST("/items", cartCtrl.AddItem)
		cart.PATCH("/items/:food_id", cartCtrl.UpdateItem)
		cart.DELETE("/items/:food_id", cartCtrl.RemoveItem)
		cart.DELETE("", cartCtrl.ClearCart)
	}

	orders := r.Group("/orders")
	{
		orders.POST("/checkout",
			middlewares.CartSession(s.Config.CartTTL),
			middlewares.CheckoutRateLimiter(),
			middlewares.LogCheckoutRequest(),
			orderCtrl.Checkout)
		orders.GET("/track/:code", orderCtrl.TrackOrder)
		orders.GET("/track/:code/qr", orderCtrl.TrackingQR)
	}

	shipping := r.Group("/api/shipping")
	shipping.Use(middlewares.NewRateLimiter(100*time.Millisecond, 30).RateLimit())
	{
		shipping.POST("/calculate", shippingCtrl.Calculate)
		shipping.GET("/threshold", shippingCtrl.Threshold)
	}

	// Rate limiter untuk login
	r.POST("/admin/login", middlewares.NewStrictRateLimiter(), userCtrl.Login)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware(s.Blacklist))
	auth.Use(middlewares.RequireRole(models.RoleStaff))

	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/profile", userCtrl.GetProfile)

	// Live order feed
	auth.GET("/ws", controllers.LiveOrdersHandler(s.Hub))

	// ORDERS (staff/admin)
	auth.GET("/orders", orderCtrl.ListOrders)
	auth.GET("/orders/export", orderCtrl.ExportOrders)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.GET("/orders/:order_id/history", orderCtrl.GetOrderHistory)
	auth.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	auth.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)

	auth.GET("/notifications", notificationCtrl.GetAllNotifications)
	auth.GET("/notifications/:notif_id", notificationCtrl.GetNotificationByID)

	auth.GET("/dashboard", adminCtrl.GetDashboardStats)

	// Routes khusus admin
	admin := auth.Group("")
	admin.Use(middlewares.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", userCtrl.GetAllUsers)
		admin.POST("/users", userCtrl.Register)

		admin.GET("/categories", categoryCtrl.GetAllCategories)
		admin.POST("/categories", categoryCtrl.CreateCategory)
		admin.GET("/categories/:cat_id", categoryCtrl.GetCategoryByID)
		admin.PUT("/categories/:cat_id", categoryCtrl.UpdateCategory)
		admin.DELETE("/categories/:cat_id", categoryCtrl.DeleteCategory)

		admin.GET("/foods", menuCtrl.GetAdminMenus)
		admin.POST("/foods", menuCtrl.CreateMenu)
		admin.PUT("/foods/:food_id", menuCtrl.UpdateMenu)
		admin.PATCH("/foods/:food_id/availability", menuCtrl.ToggleAvailability)
		admin.DELETE("/foods/:food_id", menuCtrl.DeleteMenu)

		admin.GET("/shipping-zones", shippingCtrl.ListZones)
		admin.POST("/shipping-zones", shippingCtrl.CreateZone)
		admin.GET("/shipping-zones/:zone_id", shippingCtrl.GetZone)
		admin.PUT("/shipping-zones/:zone_id", shippingCtrl.UpdateZone)
		admin.DELETE("/shipping-zones/:zone_id", shippingCtrl.DeleteZone)

		admin.GET("/reports/revenue", adminCtrl.RevenueReport)
		admin.GET("/reports/best-selling", adminCtrl.BestSellingReport)
		admin.GET("/reports/customers", adminCtrl.CustomerReport)
		admin.GET("/reports/revenue/excel", adminCtrl.ExportRevenueExcel)
		admin.GET("/reports/revenue/pdf", adminCtrl.ExportRevenuePDF)
		admin.GET("/reports/revenue/chart", adminCtrl.RevenueChart)
	}

	return r
}
