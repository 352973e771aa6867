package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ciscoruiz/coffee-sub002/config"
	"github.com/ciscoruiz/coffee-sub002/dbms"
	"github.com/ciscoruiz/coffee-sub002/dbms/sqlite"
	"github.com/ciscoruiz/coffee-sub002/persistence"
)

// app is everything a command works with, opened from the configuration.
type app struct {
	cfg    *config.Config
	driver *sqlite.Driver
	db     *dbms.Database
	conn   *dbms.Connection
	repo   *persistence.Repository
	tables map[string]*sqlite.Table
	order  []string
}

func openApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, driver, err := sqlite.OpenDatabase(&cfg.Database)
	if err != nil {
		return nil, err
	}
	db.SetLogger(logger)
	a := &app{cfg: cfg, driver: driver, db: db, tables: make(map[string]*sqlite.Table)}

	// Commands run on the first configured connection.
	a.conn, err = db.FindConnection(cfg.Database.Connections[0].Name)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.repo, err = persistence.NewRepositoryFromConfig(&cfg.Repository)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.repo.SetLogger(logger)
	for _, sc := range cfg.Repository.Storages {
		class, err := sc.Class()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.tables[sc.Name] = sqlite.NewTable(db, class, sc.TableName())
		a.order = append(a.order, sc.Name)
	}
	return a, nil
}

func (a *app) Close() error {
	return errors.Join(a.db.Close(), a.driver.Close())
}

// storage returns the storage called name and the table behind it.
func (a *app) storage(name string) (*persistence.Storage, *sqlite.Table, error) {
	storage, err := a.repo.FindStorage(name)
	if err != nil {
		return nil, nil, err
	}
	table, found := a.tables[name]
	if !found {
		return nil, nil, fmt.Errorf("%w: %s", persistence.ErrStorageNotFound, name)
	}
	return storage, table, nil
}

func (a *app) migrator() *sqlite.Migrator {
	m := sqlite.NewMigrator()
	m.SetLogger(a.repo.Logger())
	for _, name := range a.order {
		m.AddMigration(a.tables[name].Migration())
	}
	return m
}
