package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/auth"
	authpg "github.com/vqminh/tour-booking/internal/auth/postgres"
	"github.com/vqminh/tour-booking/internal/booking"
	bookingpg "github.com/vqminh/tour-booking/internal/booking/postgres"
	"github.com/vqminh/tour-booking/internal/cache"
	"github.com/vqminh/tour-booking/internal/cart"
	cartpg "github.com/vqminh/tour-booking/internal/cart/postgres"
	"github.com/vqminh/tour-booking/internal/core/events"
	"github.com/vqminh/tour-booking/internal/currency"
	"github.com/vqminh/tour-booking/internal/payment"
	paymentpg "github.com/vqminh/tour-booking/internal/payment/postgres"
	"github.com/vqminh/tour-booking/internal/provider"
	"github.com/vqminh/tour-booking/internal/provider/momo"
	"github.com/vqminh/tour-booking/internal/provider/paypal"
	"github.com/vqminh/tour-booking/internal/seatledger"
	seatledgerpg "github.com/vqminh/tour-booking/internal/seatledger/postgres"
	"github.com/vqminh/tour-booking/internal/session"
	sessionpg "github.com/vqminh/tour-booking/internal/session/postgres"
	"github.com/vqminh/tour-booking/internal/tour"
	tourpg "github.com/vqminh/tour-booking/internal/tour/postgres"
	"github.com/vqminh/tour-booking/internal/transport"
	"github.com/vqminh/tour-booking/internal/transport/rest"
	"github.com/vqminh/tour-booking/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Cache  *cache.Cache
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
		if deps.Cache != nil {
			if err := deps.Cache.Close(); err != nil {
				slog.Error("Cache close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	log := deps.Logger
	db := deps.Gorm

	eventBus := events.NewEventBus(log)
	baseHandler := transport.NewBaseHandler(log)

	// repositories
	sessionRepo := sessionpg.NewSessionRepository(db)
	bookingRepo := bookingpg.NewBookingRepository(db)
	seatRepo := seatledgerpg.NewSeatLedgerRepository(db)
	cartRepo := cartpg.NewCartRepository(db)
	tourRepo := tourpg.NewTourRepository(db)
	voucherRepo := paymentpg.NewVoucherRepository(db)
	userRepo := authpg.NewUserRepository(db)

	// domain services
	sessionStore := session.NewStore(sessionRepo, log)
	seatService := seatledger.NewService(seatRepo, log)
	reconciler := booking.NewReconciler(sessionStore, bookingRepo, seatService, eventBus, log)
	bookingService := booking.NewService(bookingRepo, seatService, log)
	cartService := cart.NewService(cartRepo, seatService, log)
	tourService := tour.NewService(tourRepo, deps.Cache, log)

	converter, err := currency.NewConverter(cfg.Payment.VNDPerUSD)
	if err != nil {
		return fmt.Errorf("currency converter: %w", err)
	}

	momoAdapter := momo.NewAdapter(momo.Config{
		Endpoint:    cfg.Payment.MoMo.Endpoint,
		PartnerCode: cfg.Payment.MoMo.PartnerCode,
		AccessKey:   cfg.Payment.MoMo.AccessKey,
		SecretKey:   cfg.Payment.MoMo.SecretKey,
		RedirectURL: cfg.Payment.MoMo.RedirectURL,
		IPNURL:      cfg.Payment.MoMo.IPNURL,
	}, log)
	paypalAdapter := paypal.NewAdapter(paypal.Config{
		BaseURL:      cfg.Payment.PayPal.BaseURL,
		ClientID:     cfg.Payment.PayPal.ClientID,
		ClientSecret: cfg.Payment.PayPal.ClientSecret,
	}, converter, log)

	adapters := map[string]provider.IntentCreator{
		momoAdapter.Name():   momoAdapter,
		paypalAdapter.Name(): paypalAdapter,
	}

	paymentService := payment.NewService(
		sessionStore, cartService, tourService, voucherRepo, bookingRepo,
		seatService, reconciler, adapters, paypalAdapter, log)

	authService := auth.NewService(
		userRepo,
		cfg.Security.JWTSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
		cfg.Security.BCryptCost)

	// event subscriptions
	cart.NewEventHandler(cartService, log).RegisterHandlers(eventBus)

	handlers := rest.Handlers{
		Auth:    auth.NewHandler(baseHandler, authService),
		Tour:    tour.NewHandler(baseHandler, tourService),
		Cart:    cart.NewHandler(baseHandler, cartService),
		Booking: booking.NewHandler(baseHandler, bookingService, sessionStore),
		Payment: payment.NewHandler(baseHandler, paymentService),
		Webhook: payment.NewWebhookHandler(baseHandler, momoAdapter, reconciler, log),
	}

	var redisPinger rest.Pinger
	if deps.Cache != nil {
		redisPinger = deps.Cache
	}
	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, redisPinger, handlers, log)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	var redisCache *cache.Cache
	if config.Redis.Enabled {
		redisCache = cache.New(config.Redis.Addr, config.Redis.Password, config.Redis.DB)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		Gorm:   gormDB,
		Cache:  redisCache,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
