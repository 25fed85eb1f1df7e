package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/takeaway/internal/adapter/logger"
	"github.com/YelzhanWeb/takeaway/internal/adapter/postgres"
	"github.com/YelzhanWeb/takeaway/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/takeaway/internal/adapter/redis"
	"github.com/YelzhanWeb/takeaway/internal/adapter/ws"
	"github.com/YelzhanWeb/takeaway/internal/app/geo"
	"github.com/YelzhanWeb/takeaway/internal/app/order"
	"github.com/YelzhanWeb/takeaway/internal/app/payment"
	"github.com/YelzhanWeb/takeaway/internal/app/relay"
	"github.com/YelzhanWeb/takeaway/internal/app/timeout"
	"github.com/YelzhanWeb/takeaway/internal/config"

	amqpAdapter "github.com/YelzhanWeb/takeaway/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/takeaway/internal/adapter/http"
)

func main() {
	// Parse command-line flags
	mode := flag.String("mode", "", "Service mode: api, timeout-worker")
	port := flag.Int("port", 3000, "HTTP port")
	prefetch := flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Initialize logger
	lgr := logger.New(*mode)

	// Connect to PostgreSQL
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	// Connect to RabbitMQ
	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	// Declare exchanges and the delay/process queue pairs. Both modes declare
	// the full topology, so either can start first.
	if err := rabbitmq.SetupTopology(mqConn, cfg.Timeouts); err != nil {
		log.Fatalf("Failed to set up RabbitMQ topology: %v", err)
	}

	switch *mode {
	case "api":
		runAPI(ctx, db, mqConn, cfg, lgr, *port, *prefetch)

	case "timeout-worker":
		runTimeoutWorker(ctx, db, mqConn, lgr, *prefetch)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runAPI(ctx context.Context, db postgres.DB, mqConn rabbitmq.Connection, cfg *config.Config, lgr logger.Logger, port, prefetch int) {
	// Connect to Redis for the sales counters
	sales, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer sales.Close()

	lgr.Info("redis_connected", "Connected to Redis", "startup", map[string]interface{}{
		"addr": cfg.Redis.Addr,
	})

	// Initialize repositories
	orderRepo := postgres.NewOrderRepository(db)
	cartRepo := postgres.NewCartRepository(db)
	addressRepo := postgres.NewAddressRepository(db)

	// Initialize messaging
	publisher := rabbitmq.NewPublisher(mqConn)
	consumer := rabbitmq.NewConsumer(mqConn, prefetch)

	// Initialize services
	ranger := geo.NewChecker(cfg.Delivery, lgr)
	gateway := payment.NewMockGateway(lgr)
	orderService := order.NewService(orderRepo, cartRepo, addressRepo, sales, publisher, ranger, gateway, lgr)

	// Websocket hub plus the fanout relay feeding it
	hub := ws.NewHub(lgr)
	go hub.Run(ctx)

	relayService := relay.NewService(hub, lgr)
	notificationHandler := amqpAdapter.NewNotificationHandler(relayService, lgr)

	go func() {
		if err := consumer.ConsumeNotifications(ctx, notificationHandler.HandleNotification); err != nil {
			lgr.Error("consumer_error", "Error consuming notifications", "runtime", nil, err)
		}
	}()

	// Initialize HTTP handlers
	orderHandler := httpAdapter.NewOrderHandler(orderService, lgr)
	adminHandler := httpAdapter.NewAdminHandler(orderService, lgr)

	mux := http.NewServeMux()
	orderHandler.Register(mux)
	adminHandler.Register(mux)
	mux.HandleFunc("GET /ws", hub.ServeWS)

	// Apply middleware
	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("API started on port %d", port), "startup", map[string]interface{}{
		"port": port,
	})

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down API", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func runTimeoutWorker(ctx context.Context, db postgres.DB, mqConn rabbitmq.Connection, lgr logger.Logger, prefetch int) {
	// Initialize repositories
	orderRepo := postgres.NewOrderRepository(db)

	// Initialize messaging
	publisher := rabbitmq.NewPublisher(mqConn)
	consumer := rabbitmq.NewConsumer(mqConn, prefetch)

	// Initialize service
	evaluator := timeout.NewService(orderRepo, publisher, lgr)

	// Initialize AMQP handler
	timeoutHandler := amqpAdapter.NewTimeoutHandler(evaluator, lgr)

	// Один consumer на каждую process-очередь
	queues := map[string]func(context.Context, []byte) error{
		rabbitmq.QueuePaymentStage1:  timeoutHandler.HandlePaymentStage1,
		rabbitmq.QueuePaymentStage2:  timeoutHandler.HandlePaymentStage2,
		rabbitmq.QueueDeliveryStage1: timeoutHandler.HandleDeliveryStage1,
		rabbitmq.QueueDeliveryStage2: timeoutHandler.HandleDeliveryStage2,
	}
	for queue, handler := range queues {
		go func(queue string, handler func(context.Context, []byte) error) {
			if err := consumer.ConsumeTimeouts(ctx, queue, handler); err != nil {
				lgr.Error("consumer_error", "Error consuming timeouts", "runtime", map[string]interface{}{
					"queue": queue,
				}, err)
			}
		}(queue, handler)
	}

	lgr.Info("service_started", "Timeout worker started", "startup", map[string]interface{}{
		"prefetch": prefetch,
	})

	// Wait for shutdown signal
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	lgr.Info("shutdown_initiated", "Shutting down timeout worker", "shutdown", nil)
}
