package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/cache"
	"github.com/restokorp/restaurant-app/controllers"
	"github.com/restokorp/restaurant-app/middlewares"
	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/services"
)

// SetupRouter wires every endpoint. Public routes cover the guest flow
// (menu, availability, booking); everything else sits behind JWT auth.
func SetupRouter(db *gorm.DB, cacheSvc *cache.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.SecurityHeaders())

	limiter := middlewares.NewRateLimiter(120, 60)
	r.Use(limiter.RateLimit())

	bookingSvc := services.NewBookingService(db)
	orderSvc := services.NewOrderService(db, bookingSvc)
	reportSvc := services.NewReportService(db)
	aiSvc := services.NewAIService()

	bookingCtrl := controllers.NewBookingController(db, bookingSvc)
	tableCtrl := controllers.NewTableController(db, cacheSvc)
	menuCtrl := controllers.NewMenuController(db, cacheSvc)
	categoryCtrl := controllers.NewCategoryController(db, cacheSvc)
	orderCtrl := controllers.NewOrderController(db, orderSvc)
	receiptCtrl := controllers.NewReceiptController(db)
	adminCtrl := controllers.NewAdminController(db, reportSvc)
	aiCtrl := controllers.NewAIController(db, aiSvc)
	userCtrl := controllers.NewUserController(db)
	notificationCtrl := controllers.NewNotificationController(db)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	strict := middlewares.NewStrictRateLimiter()
	auth := r.Group("/auth")
	{
		auth.POST("/register", strict, userCtrl.Register)
		auth.POST("/login", strict, userCtrl.Login)
	}

	api := r.Group("/api/v1")
	{
		// guest-facing, no auth
		api.GET("/menu", menuCtrl.GetMenu)
		api.GET("/menu/dishes/:dish_id", menuCtrl.GetDish)
		api.GET("/categories", categoryCtrl.GetAllCategories)
		api.GET("/tables", tableCtrl.GetAllTables)
		api.GET("/tables/:table_id/availability", bookingCtrl.CheckAvailability)
		api.POST("/bookings", bookingCtrl.CreateBooking)
		api.GET("/bookings/search", bookingCtrl.SearchBookings)
		api.GET("/bookings/:booking_id", bookingCtrl.GetBooking)
		api.PATCH("/bookings/:booking_id", bookingCtrl.UpdateBooking)
		api.DELETE("/bookings/:booking_id", bookingCtrl.CancelBooking)

		api.POST("/assistant/chat", aiCtrl.Chat)
		api.GET("/assistant/search", aiCtrl.SearchMenu)
		api.POST("/assistant/upsell", aiCtrl.Upsell)
	}

	authed := r.Group("/api/v1")
	authed.Use(middlewares.AuthMiddleware())
	{
		authed.GET("/profile", userCtrl.Profile)
		authed.POST("/logout", userCtrl.Logout)

		authed.GET("/notifications", notificationCtrl.ListNotifications)
		authed.PATCH("/notifications/:notification_id/read", notificationCtrl.MarkRead)

		authed.GET("/ws", controllers.LiveHandler)

		staff := authed.Group("")
		staff.Use(middlewares.RequireRole(models.RoleAdmin, models.RoleWaiter))
		{
			staff.GET("/bookings", bookingCtrl.ListBookings)
			staff.GET("/tables/:table_id", tableCtrl.GetTable)

			staff.POST("/orders", orderCtrl.CreateOrder)
			staff.GET("/orders", orderCtrl.ListOrders)
			staff.GET("/orders/:order_id", orderCtrl.GetOrder)
			staff.POST("/orders/:order_id/items", orderCtrl.AddItems)
			staff.PATCH("/orders/:order_id/status", orderCtrl.UpdateStatus)
			staff.POST("/orders/:order_id/close", orderCtrl.CloseOrder)

			staff.GET("/orders/:order_id/receipt", receiptCtrl.GetReceiptByOrder)
			staff.GET("/receipts/:receipt_id", receiptCtrl.GetReceipt)
		}

		admin := authed.Group("/admin")
		admin.Use(middlewares.RequireRole(models.RoleAdmin))
		{
			admin.POST("/tables", tableCtrl.CreateTable)
			admin.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
			admin.DELETE("/tables/:table_id", tableCtrl.DeactivateTable)

			admin.POST("/dishes", menuCtrl.CreateDish)
			admin.PATCH("/dishes/:dish_id", menuCtrl.UpdateDish)
			admin.DELETE("/dishes/:dish_id", menuCtrl.DeleteDish)

			admin.POST("/categories", categoryCtrl.CreateCategory)
			admin.PATCH("/categories/:category_id", categoryCtrl.UpdateCategory)
			admin.DELETE("/categories/:category_id", categoryCtrl.DeleteCategory)

			admin.GET("/users", userCtrl.ListUsers)
			admin.POST("/register", userCtrl.Register)
			admin.POST("/notifications", notificationCtrl.CreateNotification)

			admin.GET("/receipts", receiptCtrl.ListReceipts)
			admin.GET("/stats", adminCtrl.GetDashboardStats)
			admin.GET("/reports/daily", adminCtrl.GetDailyReport)
			admin.GET("/reports/orders.xlsx", adminCtrl.ExportOrders)
		}
	}

	return r
}
