// Comando migrate: aplica o revierte el esquema embebido.
//
//	migrate [up|down]
package main

import (
	"flag"
	"os"

	"github.com/jhoicas/inventario-traslados/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-traslados/pkg/config"
	"github.com/jhoicas/inventario-traslados/pkg/logger"
)

func main() {
	flag.Parse()
	direction := "up"
	if flag.NArg() > 0 {
		direction = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	if err := postgres.Migrate(cfg.DB.ConnectionString(), direction, log.Zerolog()); err != nil {
		log.Error().Err(err).Str("direction", direction).Msg("migración fallida")
		os.Exit(1)
	}
}
