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

	"github.com/jhoicas/inventario-traslados/internal/application/events"
	"github.com/jhoicas/inventario-traslados/internal/application/inventory"
	"github.com/jhoicas/inventario-traslados/internal/application/reconcile"
	"github.com/jhoicas/inventario-traslados/internal/application/transfer"
	infrapdf "github.com/jhoicas/inventario-traslados/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-traslados/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-traslados/internal/infrastructure/rabbitmq"
	httpRouter "github.com/jhoicas/inventario-traslados/internal/interfaces/http"
	"github.com/jhoicas/inventario-traslados/pkg/config"
	"github.com/jhoicas/inventario-traslados/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Dur("tx_timeout", cfg.Engine.TxTimeout).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Eventos: RabbitMQ si está configurado; si el broker no responde se sigue sin publicar.
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Rabbit.Enabled() {
		pub, err := rabbitmq.Dial(cfg.Rabbit.URL, cfg.Rabbit.Exchange, cfg.App.Name)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ no disponible, eventos deshabilitados")
		} else {
			publisher = pub
			defer pub.Close()
		}
	}

	txRunner := postgres.NewTxRunner(pool, cfg.Engine.TxTimeout)
	repos := postgres.ReposFor(pool)

	workflow := transfer.NewWorkflow(txRunner, repos, publisher, log.Component("transfer"))
	slips := transfer.NewSlipUseCase(workflow, infrapdf.NewSlipRenderer(cfg.App.Name))
	relocationUC := inventory.NewRelocationUseCase(txRunner, publisher, log.Component("relocation"))
	ledgerUC := inventory.NewLedgerUseCase(txRunner, repos, log.Component("ledger"))
	reconciler := reconcile.NewReconciler(txRunner, repos, publisher, log.Component("reconcile"), reconcile.Config{
		MaxRetries: cfg.Engine.ReconcileMaxRetries,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Traslados API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Workflow:   workflow,
		Slips:      slips,
		Relocation: relocationUC,
		Ledger:     ledgerUC,
		Reconciler: reconciler,
		JWTSecret:  cfg.JWT.Secret,
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
