package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/nexus-ai/internal/api/http"
	"github.com/spec-kit/nexus-ai/internal/api/http/handlers"
	"github.com/spec-kit/nexus-ai/internal/auth"
	"github.com/spec-kit/nexus-ai/internal/classifier"
	"github.com/spec-kit/nexus-ai/internal/config"
	"github.com/spec-kit/nexus-ai/internal/events"
	"github.com/spec-kit/nexus-ai/internal/observability"
	"github.com/spec-kit/nexus-ai/internal/persistence"
	"github.com/spec-kit/nexus-ai/internal/repository"
	"github.com/spec-kit/nexus-ai/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	aiClassifier, err := classifier.New(cfg.AI, logger)
	if err != nil {
		logger.Fatal("failed to init classifier", zap.Error(err))
	}
	logger.Info("classifier configured", zap.String("provider", cfg.AI.Provider))

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, event events.Event) error {
		metrics.RecordClassification(event.Ticket.Category, string(event.Ticket.Urgency))
		logger.Info("classification recorded",
			zap.Int64("ticket_id", event.Ticket.ID),
			zap.String("category", event.Ticket.Category),
			zap.String("urgency", string(event.Ticket.Urgency)),
			zap.String("model_version", event.Ticket.ModelVersion))
		return nil
	})

	ticketRepo := repository.NewTicketRepository(pg.PoolHandle())
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Classifier: aiClassifier,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	ticketsHandler := handlers.NewTicketsHandler(ticketService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Tickets:        ticketsHandler,
		AuthMiddleware: authMiddleware,
		AuthRequired:   cfg.Auth.Required,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
