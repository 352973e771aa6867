package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ciscoruiz/coffee-sub002"
)

// Migration represents one migration step
type Migration struct {
	Up   string // Query to apply migration
	Down string // Query to rollback migration
}

// Migrator applies schema migrations one by one. The schema version is the
// number of migrations applied; every change of version is recorded in a
// service table.
type Migrator struct {
	coffee.OptionalLogger
	migrations []Migration
	tabName    string
}

// Creates a new Migrator instance
func NewMigrator() *Migrator {
	return NewMigratorWithMigrations(make([]Migration, 0))
}

// Creates a new Migrator instance and inits it with given migration list
func NewMigratorWithMigrations(migrations []Migration) *Migrator {
	return &Migrator{
		OptionalLogger: coffee.OptionalLogger{LogPrefix: "Migrator"},
		migrations:     migrations,
		tabName:        "coffee_migration",
	}
}

// Set name of service table, that stores current schema version
func (m *Migrator) SetMigrationTabName(n string) *Migrator {
	m.tabName = n
	return m
}

func (m *Migrator) AddMigration(migration Migration) {
	m.migrations = append(m.migrations, migration)
}

func (m *Migrator) Len() int {
	return len(m.migrations)
}

// Update applies every pending migration in a single transaction.
func (m *Migrator) Update(db *sql.DB) error {
	return m.MigrateToVersion(db, len(m.migrations))
}

// MigrateToVersion moves the schema up or down to version. Going down runs
// the Down queries in reverse order.
func (m *Migrator) MigrateToVersion(db *sql.DB, version int) error {
	if version < 0 || version > len(m.migrations) {
		return coffee.ConfigurationError("%s: version %d out of range [0, %d]", m.tabName, version, len(m.migrations))
	}
	current, err := m.Version(db)
	if err != nil {
		return err
	}
	if current == version {
		return nil
	}
	if current > len(m.migrations) {
		return coffee.ConfigurationError("%s: schema version %d is newer than the %d known migrations", m.tabName, current, len(m.migrations))
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := m.migrate(tx, current, version); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if _, err := tx.Exec(fmt.Sprintf("INSERT INTO %s (`version`) VALUES (?)", quote(m.tabName)), version); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	m.Info("schema migrated", "from", current, "to", version)
	return nil
}

func (m *Migrator) migrate(tx *sql.Tx, from, to int) error {
	for num := from + 1; num <= to; num++ {
		mig := m.migrations[num-1]
		if _, err := tx.Exec(mig.Up); err != nil {
			return fmt.Errorf("migration #%d (%s): %w", num, mig.Up, err)
		}
		m.Log("migration applied", "num", num)
	}
	for num := from; num > to; num-- {
		mig := m.migrations[num-1]
		if mig.Down == "" {
			return coffee.ConfigurationError("migration #%d can not be rolled back", num)
		}
		if _, err := tx.Exec(mig.Down); err != nil {
			return fmt.Errorf("migration #%d rollback (%s): %w", num, mig.Down, err)
		}
		m.Log("migration rolled back", "num", num)
	}
	return nil
}

// Version returns the current schema version, creating the service table on
// first use.
func (m *Migrator) Version(db *sql.DB) (int, error) {
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (`id` INTEGER PRIMARY KEY AUTOINCREMENT, `version` INTEGER NOT NULL, `performed_at` DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP)",
		quote(m.tabName))
	if _, err := db.Exec(ddl); err != nil {
		return 0, fmt.Errorf("%s: %w", m.tabName, err)
	}
	version := 0
	err := db.QueryRow(fmt.Sprintf("SELECT `version` FROM %s ORDER BY `id` DESC LIMIT 1", quote(m.tabName))).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", m.tabName, err)
	}
	return version, nil
}
