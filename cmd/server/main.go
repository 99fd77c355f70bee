package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/mgiraldo/storefront/internal/adapter/auth"
	"github.com/mgiraldo/storefront/internal/adapter/events"
	"github.com/mgiraldo/storefront/internal/adapter/handler"
	"github.com/mgiraldo/storefront/internal/adapter/notifier"
	"github.com/mgiraldo/storefront/internal/adapter/payment"
	"github.com/mgiraldo/storefront/internal/adapter/storage"
	"github.com/mgiraldo/storefront/internal/config"
	"github.com/mgiraldo/storefront/internal/core/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Println("connected to redis")

	// Initialize adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)
	publisher := events.NewPublisher(cfg.Brokers(), cfg.KafkaTopic)
	mailer := notifier.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom)
	gateway := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentAccessToken, cfg.StoreBaseURL)
	authorizer := auth.NewTokenAuthorizer(cfg.ParseStaffTokens())

	// Initialize services
	catalogService := service.NewCatalogService(mysqlAdapter)
	cartService := service.NewCartService(redisAdapter, mysqlAdapter)
	couponService := service.NewCouponService(mysqlAdapter, authorizer)
	checkoutService := service.NewCheckoutService(mysqlAdapter, mysqlAdapter, mysqlAdapter, couponService, gateway, redisAdapter)
	orderService := service.NewOrderService(mysqlAdapter, mysqlAdapter, mailer, publisher, authorizer)

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(catalogService, cartService, couponService, checkoutService, orderService)
	mux := http.NewServeMux()
	httpHandler.Register(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	if err := publisher.Close(); err != nil {
		log.Printf("failed to close kafka writer: %v", err)
	}
	rdb.Close()
	db.Close()
	log.Println("connections closed")
}
