// Package migrations embeds the SQL schema and applies it at startup.
package migrations

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/restylabs/resty/core/csql"
)

//go:embed *.sql
var files embed.FS

// Up applies all pending migrations on the given database.
func Up(db *csql.DB) error {
	source, err := iofs.New(files, ".")
	if err != nil {
		return err
	}
	driver, err := mysql.WithInstance(db.DB, &mysql.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
