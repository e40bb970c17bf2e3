package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/pkg/config"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	UpDownSeparator     = "-- +migrate Up"
	downMarker          = "-- +migrate Down"
	pkSerialReplacer    = "/*pk_serial*/"
	NoLimitMigrations   = 0 // indicate that there is no limit on the number of migrations to run
	migrationDirections = 2
)

// Migration is one embedded schema change. SQL holds the Down section followed
// by the Up section and may use dialect placeholders such as /*pk_serial*/.
type Migration struct {
	ID  string
	SQL string
}

// dialectReplacer rewrites placeholders for the target driver.
func dialectReplacer(driver string) (*strings.Replacer, string, error) {
	switch driver {
	case config.DriverSQLite, "":
		return strings.NewReplacer(pkSerialReplacer, "INTEGER PRIMARY KEY AUTOINCREMENT"), "sqlite3", nil
	case config.DriverPostgres:
		return strings.NewReplacer(pkSerialReplacer, "BIGSERIAL PRIMARY KEY"), "postgres", nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// RunMigrationsDB will execute pending migrations if needed to keep
// the database updated with the latest changes.
func RunMigrationsDB(log *logger.Logger, db *sql.DB, driver string, migrationsParam []Migration) error {
	return RunMigrationsDBExtended(log, db, driver, migrationsParam, migrate.Up, NoLimitMigrations)
}

// RunMigrationsDBExtended is an extended version of RunMigrationsDB that allows
// dir: can be migrate.Up or migrate.Down
// maxMigrations: Will apply at most `max` migrations. Pass 0 for no limit (or use Exec)
func RunMigrationsDBExtended(log *logger.Logger,
	db *sql.DB,
	driver string,
	migrationsParam []Migration,
	dir migrate.MigrationDirection,
	maxMigrations int) error {
	replacer, dialect, err := dialectReplacer(driver)
	if err != nil {
		return err
	}

	migs := &migrate.MemoryMigrationSource{Migrations: make([]*migrate.Migration, 0, len(migrationsParam))}
	for _, m := range migrationsParam {
		splitted := strings.Split(replacer.Replace(m.SQL), UpDownSeparator)
		if len(splitted) < migrationDirections {
			return fmt.Errorf("migration %s missing '%s' separator", m.ID, UpDownSeparator)
		}

		downSQL := splitted[0]
		if idx := strings.Index(downSQL, downMarker); idx != -1 {
			downSQL = downSQL[idx+len(downMarker):]
		}

		migs.Migrations = append(migs.Migrations, &migrate.Migration{
			Id:   m.ID,
			Up:   []string{strings.TrimSpace(splitted[1])},
			Down: []string{strings.TrimSpace(downSQL)},
		})
	}

	ids := make([]string, 0, len(migs.Migrations))
	for _, m := range migs.Migrations {
		ids = append(ids, m.Id)
	}
	listMigrations := strings.Join(ids, ", ")

	log.Debugf("running migrations: (max %d/%d) migrations: %s", maxMigrations,
		len(migs.Migrations), listMigrations)

	nMigrations, err := migrate.ExecMax(db, dialect, migs, dir, maxMigrations)
	if err != nil {
		return fmt.Errorf("error executing migration (max %d/%d) migrations: %s . Err: %w",
			maxMigrations, len(migs.Migrations), listMigrations, err)
	}

	log.Infof("successfully ran %d migrations from migrations: %s", nMigrations, listMigrations)
	return nil
}
