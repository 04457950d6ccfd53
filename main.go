package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/restokorp/restaurant-app/cache"
	"github.com/restokorp/restaurant-app/config"
	"github.com/restokorp/restaurant-app/metrics"
	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/router"
	"github.com/restokorp/restaurant-app/services"
	"github.com/restokorp/restaurant-app/utils"
)

func main() {
	utils.InitLogger()
	config.LoadEnv()
	metrics.Register()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Database init failed: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Booking{},
		&models.DishCategory{},
		&models.Dish{},
		&models.Order{},
		&models.OrderItem{},
		&models.Receipt{},
		&models.ReceiptItem{},
		&models.Notification{},
	); err != nil {
		utils.ErrorLogger.Fatalf("Migration failed: %v", err)
	}

	cacheSvc := cache.NewService(newCacheStore())

	bookingSvc := services.NewBookingService(db)
	reportSvc := services.NewReportService(db)
	warmer := services.NewCacheWarmer(db, cacheSvc)

	if err := warmer.Warm(); err != nil {
		utils.ErrorLogger.Printf("Initial cache warmup failed: %v", err)
	}

	jobs := services.NewJobRunner(
		services.Job{
			Name:     "booking-sweep",
			Interval: time.Hour,
			Run: func() error {
				n, err := bookingSvc.SweepExpiredBookings()
				if n > 0 {
					metrics.AddBookingsSwept(n)
					utils.InfoLogger.Printf("Sweep completed %d expired bookings", n)
				}
				return err
			},
		},
		services.Job{
			Name:     "cache-warmup",
			Interval: 10 * time.Minute,
			Run:      warmer.Warm,
		},
		services.Job{
			Name:     "daily-report",
			Interval: 24 * time.Hour,
			Run:      reportSvc.LogDailyReport,
		},
		services.Job{
			Name:     "token-blacklist-cleanup",
			Interval: time.Hour,
			Run: func() error {
				utils.CleanupBlacklist()
				return nil
			},
		},
	)
	jobs.Start()
	defer jobs.Stop()

	r := router.SetupRouter(db, cacheSvc)

	port := config.Getenv("PORT", "8080")
	utils.InfoLogger.Printf("Server starting on :%s", port)

	go func() {
		if err := r.Run(":" + port); err != nil {
			utils.ErrorLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down")
}

// newCacheStore picks redis when REDIS_ADDR is set, in-memory otherwise.
func newCacheStore() cache.Store {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		utils.InfoLogger.Println("REDIS_ADDR not set, using in-memory cache")
		return cache.NewMemoryStore()
	}

	dbNum := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			dbNum = n
		}
	}

	client := cache.NewRedisClient(addr, os.Getenv("REDIS_PASSWORD"), dbNum)
	utils.InfoLogger.Printf("Using redis cache at %s", addr)
	return cache.NewRedisStore(client)
}
