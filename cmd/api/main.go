package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/cashdesk-api/internal/application/analytics"
	"github.com/jhoicas/cashdesk-api/internal/application/auth"
	"github.com/jhoicas/cashdesk-api/internal/application/custody"
	"github.com/jhoicas/cashdesk-api/internal/application/expenses"
	"github.com/jhoicas/cashdesk-api/internal/application/notification"
	"github.com/jhoicas/cashdesk-api/internal/application/session"
	"github.com/jhoicas/cashdesk-api/internal/application/usecase"
	"github.com/jhoicas/cashdesk-api/internal/infrastructure/postgres"
	"github.com/jhoicas/cashdesk-api/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/cashdesk-api/internal/interfaces/http"
	"github.com/jhoicas/cashdesk-api/pkg/config"
	"github.com/jhoicas/cashdesk-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Lock de custodias: Redis si está configurado; si no, solo la BD serializa.
	var locker custody.Locker = custody.NopLocker{}
	if cfg.Redis.Enabled() {
		rdb, err := redislock.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, lock de custodias desactivado")
		} else {
			defer rdb.Close()
			locker = redislock.New(rdb)
			log.Info().Str("addr", cfg.Redis.Address).Msg("lock de custodias con redis")
		}
	}

	txRunner := postgres.NewTxRunner(pool)
	userRepo := postgres.NewUserRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)
	membershipRepo := postgres.NewMembershipRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	custodyRepo := postgres.NewCustodyRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool, txRunner)
	dashboardRepo := postgres.NewDashboardRepository(pool)

	resolver := session.NewResolver(membershipRepo, cfg.Session.CapabilityCacheTTL)
	inbox := notification.NewStore()

	authUC := auth.NewAuthUseCase(userRepo, resolver, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	companyUC := usecase.NewCompanyUseCase(txRunner, companyRepo, membershipRepo, userRepo, resolver)
	moduleSvc := usecase.NewModuleService(companyRepo)
	expensesUC := expenses.NewUseCase(movementRepo, membershipRepo, inbox, log)
	custodyUC := custody.NewUseCase(custodyRepo, ledgerRepo, membershipRepo, locker, cfg.Session.CustodyLockTTL, log)
	dashboardUC := appanalytics.NewDashboardUseCase(dashboardRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Cashdesk API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		CompanyUC:     companyUC,
		Modules:       moduleSvc,
		ExpensesUC:    expensesUC,
		CustodyUC:     custodyUC,
		DashboardUC:   dashboardUC,
		Notifications: inbox,
		Resolver:      resolver,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
