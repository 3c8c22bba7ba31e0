package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"tradeacademy/configs"
	"tradeacademy/internal/database"
	deliveryhttp "tradeacademy/internal/delivery/http"
	"tradeacademy/internal/infra"
	"tradeacademy/internal/repository"
	"tradeacademy/internal/service"
	"tradeacademy/internal/usecase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg := configs.Load()

	ctx := context.Background()

	// Initialize database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)

	// Initialize services
	priceSource := service.NewMarketPriceService(cfg.Market.QuoteURL)
	admissionService := service.NewAdmissionService(orderRepo, userRepo, cfg.Trading.DailyTradeLimit)
	settlementService := service.NewSettlementService(orderRepo)
	triggerService := service.NewTriggerService(orderRepo, settlementService)
	achievementService := service.NewAchievementService(orderRepo, userRepo, achievementRepo)

	tradingService := usecase.NewTradingService(
		orderRepo,
		userRepo,
		admissionService,
		triggerService,
		settlementService,
		achievementService,
		priceSource,
	)

	// Start the evaluation scheduler
	scheduler := infra.NewScheduler(tradingService, cfg.Trading.EvaluateSeconds)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start evaluation scheduler: %v", err)
	}
	defer scheduler.Stop()

	// API server
	e := echo.New()
	e.HideBanner = true
	deliveryhttp.SetupRoutes(e, &deliveryhttp.RouterConfig{
		AuthHandler:  deliveryhttp.NewAuthHandler(userRepo, cfg.Trading.StartingBalance),
		OrderHandler: deliveryhttp.NewOrderHandler(tradingService, cfg.Trading.DailyTradeLimit),
		UserHandler:  deliveryhttp.NewUserHandler(userRepo, achievementRepo, tradingService),
		AdminHandler: deliveryhttp.NewAdminHandler(db, tradingService),
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("TradeAcademy API starting on %s (env: %s)", addr, cfg.Server.Env)
		log.Printf("Starting balance: $%.2f, trial limit: %d trades/day, evaluation every %ds",
			cfg.Trading.StartingBalance, cfg.Trading.DailyTradeLimit, cfg.Trading.EvaluateSeconds)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	// Internal ops listener: health plus a manual evaluation trigger.
	opsSrv := newOpsServer(cfg.Ops.Port, db, scheduler)
	go func() {
		log.Printf("Ops listener starting on :%s", cfg.Ops.Port)
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start ops listener: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: API server forced to shutdown: %v", err)
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Ops listener forced to shutdown: %v", err)
	}

	log.Println("[OK] Server exited gracefully")
}

func newOpsServer(port string, db interface{ Ping(context.Context) error }, scheduler *infra.Scheduler) *http.Server {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "healthy"
		if err := db.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "tradeacademy", "database": %q, "timestamp": %q}`,
			dbStatus, time.Now().Format(time.RFC3339))
	})

	r.Post("/evaluate/trigger", func(w http.ResponseWriter, req *http.Request) {
		log.Println("Manual evaluation pass triggered via ops API")

		go func() {
			if err := scheduler.RunNow(); err != nil {
				log.Printf("ERROR: Manual evaluation failed: %v", err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"message": "Evaluation pass triggered", "status": "processing"}`))
	})

	return &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
