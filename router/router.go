package router

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/config"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/controllers"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/middlewares"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/services"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Static frontends: booking site, table-side ordering, admin console
	workDir, _ := os.Getwd()
	frontendPath := filepath.Join(workDir, "frontend")
	if _, err := os.Stat(frontendPath); err == nil {
		r.Static("/booking", filepath.Join(frontendPath, "booking"))
		r.Static("/order", filepath.Join(frontendPath, "ordering"))
		r.Static("/admin", filepath.Join(frontendPath, "admin"))

		r.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/booking/bookingweb.html")
		})
	}

	sessionSvc := services.NewSessionService(db, cfg.FreezeOnPause)
	mailer := services.NewMailerService(cfg)

	adminCtrl := controllers.NewAdminController(db)
	customerCtrl := controllers.NewCustomerController(db, mailer)
	bookingCtrl := controllers.NewBookingController(db)
	sessionCtrl := controllers.NewSessionController(sessionSvc)
	orderCtrl := controllers.NewOrderController(db)
	menuCtrl := controllers.NewMenuController(db)
	reportCtrl := controllers.NewReportController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK", "message": "Server is running"})
	})

	api := r.Group("/api")

	// Credential endpoints behind the strict limiter
	authRoutes := api.Group("/")
	authRoutes.Use(middlewares.NewStrictRateLimiter())
	{
		authRoutes.POST("/signup", adminCtrl.Signup)
		authRoutes.POST("/login", adminCtrl.Login)
		authRoutes.POST("/customer/signup", customerCtrl.Signup)
		authRoutes.POST("/customer/login", customerCtrl.Login)
	}

	// Customer self-service
	api.PUT("/customer/profile", customerCtrl.UpdateProfile)
	api.GET("/verify-email", customerCtrl.VerifyEmail)
	api.POST("/bookings", bookingCtrl.CreateBooking)

	// Table-side ordering (no login; the session id is the capability)
	api.POST("/order-sessions", sessionCtrl.CreateSession)
	api.PUT("/order-sessions/:session_id", sessionCtrl.ApplyAction)
	api.POST("/order-sessions/:session_id/reset", sessionCtrl.ResetSession)
	api.GET("/order-sessions/:session_id", sessionCtrl.GetSession)

	api.POST("/orders", orderCtrl.CreateOrder)
	api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	api.GET("/orders/table/:table_number", orderCtrl.GetOrdersByTable)

	api.GET("/menu-items", menuCtrl.GetAllMenuItems)
	api.GET("/network-info", reportCtrl.GetNetworkInfo)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.POST("/logout", adminCtrl.Logout)
	auth.GET("/admin/profile", adminCtrl.GetProfile)

	// Reservations (staff/admin)
	auth.GET("/admin/reservations", bookingCtrl.GetAllReservations)
	auth.POST("/admin/reservations", bookingCtrl.CreateReservation)
	auth.GET("/admin/reservations/:id", bookingCtrl.GetReservationByID)
	auth.PUT("/admin/reservations/:id", bookingCtrl.UpdateReservation)
	auth.DELETE("/admin/reservations/:id", bookingCtrl.DeleteReservation)
	auth.GET("/admin/reservation-stats", bookingCtrl.GetReservationStats)

	// Menu management
	auth.POST("/menu-items", menuCtrl.CreateMenuItem)
	auth.PATCH("/menu-items/:item_id", menuCtrl.UpdateMenuItem)
	auth.DELETE("/menu-items/:item_id", menuCtrl.DeleteMenuItem)

	// Session maintenance
	auth.POST("/fix-broken-sessions", sessionCtrl.RepairBrokenSessions)

	// Reporting
	auth.GET("/dashboard-stats", reportCtrl.GetDashboardStats)
	auth.GET("/sales-data", reportCtrl.GetSalesData)
	auth.GET("/sales-summary", reportCtrl.GetSalesSummary)
	auth.GET("/detailed-sales", reportCtrl.GetDetailedSales)

	// Destructive reset is superadmin only
	reset := auth.Group("/")
	reset.Use(middlewares.RequireRole("superadmin"))
	{
		reset.POST("/reset-sales-data", reportCtrl.ResetSalesData)
	}

	// WebSocket endpoint for dashboard clients
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/:role", controllers.EventsHandler)
	}

	return r
}
