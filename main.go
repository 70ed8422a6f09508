package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/config"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/middlewares"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/models"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/router"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/services"
	"github.com/wanamsabukid860/wanam-sa-bukid-booking/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	// Load .env before anything reads the environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InfoLogger = logrus.New()
	utils.ErrorLogger = logrus.New()

	utils.InfoLogger.SetOutput(os.Stdout)
	utils.ErrorLogger.SetOutput(os.Stderr)

	utils.InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
	utils.ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
}

func main() {
	cfg := config.Load()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// shared handle for helpers; controllers get their own injected copy
	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)
	seedSuperAdmin(db)

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	bookingMonitor := services.NewBookingMonitor(db)
	bookingMonitor.Start()
	defer bookingMonitor.Stop()

	r := router.SetupRouter(db, cfg)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies(cfg.TrustedProxies)

	utils.InfoLogger.Printf("Booking server listening on port %s", cfg.Port)
	utils.InfoLogger.Printf("Ordering system (phones on the same Wi-Fi): http://<lan-ip>:%s/order", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Admin{},
		&models.Customer{},
		&models.Booking{},
		&models.OrderSession{},
		&models.Order{},
		&models.OrderItem{},
		&models.MenuItem{},
		&models.Sale{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}

// seedSuperAdmin makes sure the back office is reachable on a fresh
// database. The default password must be rotated on first login.
func seedSuperAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.Admin{}).Where("role = ?", "superadmin").Count(&count)
	if count > 0 {
		return
	}

	password := os.Getenv("SUPERADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to hash superadmin password: %v", err)
		return
	}

	if err := db.Create(&models.Admin{
		Username: "superadmin",
		Password: string(hashed),
		Role:     "superadmin",
	}).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to seed superadmin: %v", err)
		return
	}
	utils.InfoLogger.Println("Default superadmin account created")
}
