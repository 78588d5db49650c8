package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationFiles embed.FS

// RunMigrations applies (or with down=true reverts) the embedded schema
// migrations for the given store.
func RunMigrations(db *sql.DB, store string, down bool, logger *zap.Logger) error {
	source, err := iofs.New(migrationFiles, "migrations/"+store)
	if err != nil {
		return fmt.Errorf("could not open migrations for %s: %w", store, err)
	}

	var driver migratedb.Driver
	switch store {
	case "sqlite":
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case "postgres":
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		return fmt.Errorf("unsupported database driver: %s", store)
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, store, driver)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("could not read migration version: %w", verr)
	}
	logger.Info("Migrations completed",
		zap.String("store", store),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Bool("down", down),
	)
	return nil
}
