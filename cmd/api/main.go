package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/lithovolt/warranty-service/internal/api/http"
	"github.com/lithovolt/warranty-service/internal/api/http/handlers"
	"github.com/lithovolt/warranty-service/internal/auth"
	"github.com/lithovolt/warranty-service/internal/authz"
	"github.com/lithovolt/warranty-service/internal/config"
	"github.com/lithovolt/warranty-service/internal/events"
	"github.com/lithovolt/warranty-service/internal/observability"
	"github.com/lithovolt/warranty-service/internal/persistence"
	"github.com/lithovolt/warranty-service/internal/queue"
	"github.com/lithovolt/warranty-service/internal/repository"
	"github.com/lithovolt/warranty-service/internal/service"
	"github.com/lithovolt/warranty-service/internal/worker"
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
	if cfg.Postgres.SeedRoles {
		if err := persistence.SeedRolesAndGrants(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to seed roles", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	claimRepo := repository.NewClaimRepository(pool)
	historyRepo := repository.NewClaimHistoryRepository(pool)
	attachmentRepo := repository.NewClaimAttachmentRepository(pool)
	warrantyRepo := repository.NewWarrantyRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	notificationLogRepo := repository.NewNotificationLogRepository(pool)

	store := authz.NewStore(staffRepo, roleRepo)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	notificationQueue := queue.NewRedisQueue(rdb.Client, cfg.Notification.QueueKey)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	claimService := service.NewClaimService(service.ClaimDependencies{
		ClaimRepo:      claimRepo,
		HistoryRepo:    historyRepo,
		AttachmentRepo: attachmentRepo,
		StaffRepo:      staffRepo,
		Permissions:    store,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
	})
	warrantyService := service.NewWarrantyService(service.WarrantyDependencies{
		WarrantyRepo:   warrantyRepo,
		InventoryRepo:  inventoryRepo,
		ClaimRepo:      claimRepo,
		AttachmentRepo: attachmentRepo,
		UserRepo:       userRepo,
		Permissions:    store,
		Dispatcher:     dispatcher,
	})
	staffService := service.NewStaffService(staffRepo, userRepo, roleRepo, store)
	roleService := service.NewRoleService(roleRepo, store)
	inventoryService := service.NewInventoryService(inventoryRepo, userRepo, store, dispatcher)

	notificationService := service.NewNotificationService(dispatcher, notificationQueue, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	notificationWorker := worker.NewNotificationWorker(notificationQueue, notificationLogRepo, logger, cfg.Notification)
	go notificationWorker.Run(ctx)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo, store)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Auth:           handlers.NewAuthHandler(authService),
		Claims:         handlers.NewClaimsHandler(claimService, warrantyService),
		Warranties:     handlers.NewWarrantiesHandler(warrantyService),
		Staff:          handlers.NewStaffHandler(staffService),
		Roles:          handlers.NewRolesHandler(roleService),
		Inventory:      handlers.NewInventoryHandler(inventoryService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
