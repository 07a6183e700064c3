package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // driver "pgx" para database/sql
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate aplica (up) o revierte (down) las migraciones embebidas. Sin cambios pendientes no es error.
func Migrate(dsn, direction string, log zerolog.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("abrir conexión de migración: %w", err)
	}
	defer db.Close()

	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		return fmt.Errorf("dirección de migración desconocida %q (up|down)", direction)
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Str("direction", direction).Msg("sin migraciones pendientes")
			return nil
		}
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			return fmt.Errorf("migración fallida: base de datos sucia en la versión %d", dirty.Version)
		}
		return fmt.Errorf("migración fallida: %w", err)
	}

	version, _, _ := m.Version()
	log.Info().Str("direction", direction).Uint("version", version).Msg("migraciones aplicadas")
	return nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("leer migraciones embebidas: %w", err)
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{SchemaName: "public"})
	if err != nil {
		return nil, fmt.Errorf("crear driver de migración: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	return m, nil
}
