// Comando reconcile: compara el total maestro de cada ítem con lo distribuido por
// departamento, corrige las filas y escribe el reporte JSON en stdout.
//
//	reconcile [--dry-run] [--item <id>]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/inventario-traslados/internal/application/events"
	"github.com/jhoicas/inventario-traslados/internal/application/reconcile"
	"github.com/jhoicas/inventario-traslados/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-traslados/internal/infrastructure/rabbitmq"
	"github.com/jhoicas/inventario-traslados/pkg/config"
	"github.com/jhoicas/inventario-traslados/pkg/logger"
)

// Códigos de salida: 0 sin hallazgos, 1 error, 2 hallazgos que requieren revisión.
const (
	exitOK     = 0
	exitError  = 1
	exitIssues = 2
)

func main() {
	os.Exit(run())
}

// run devuelve el código de salida; los defer cierran pool, publicador y señales antes de salir.
func run() int {
	dryRun := flag.Bool("dry-run", false, "calcula los ajustes sin escribir")
	itemID := flag.String("item", "", "concilia solo este ítem")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		return exitError
	}
	// El reporte va a stdout; los logs a stderr.
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "reconcile",
		Output:  os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("conexión a PostgreSQL")
		return exitError
	}
	defer pool.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Rabbit.Enabled() && !*dryRun {
		pub, err := rabbitmq.Dial(cfg.Rabbit.URL, cfg.Rabbit.Exchange, cfg.App.Name)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ no disponible, eventos deshabilitados")
		} else {
			publisher = pub
			defer pub.Close()
		}
	}

	reconciler := reconcile.NewReconciler(
		postgres.NewTxRunner(pool, cfg.Engine.TxTimeout),
		postgres.ReposFor(pool),
		publisher,
		log.Component("reconcile"),
		reconcile.Config{MaxRetries: cfg.Engine.ReconcileMaxRetries},
	)

	report, err := reconciler.Run(ctx, reconcile.Options{DryRun: *dryRun, ItemID: *itemID})
	if report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			log.Error().Err(encErr).Msg("escribir reporte")
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("conciliación interrumpida")
	}
	return exitCode(report, err)
}

func exitCode(report *reconcile.Report, err error) int {
	switch {
	case err != nil:
		return exitError
	case report != nil && len(report.Issues) > 0:
		return exitIssues
	default:
		return exitOK
	}
}
