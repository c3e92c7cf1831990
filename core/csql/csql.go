package csql

import (
	"database/sql"

	"github.com/go-sql-driver/mysql"
)

// DB encapsulates a standard sql.DB. The framework builds statements with
// `?` placeholders, so the handle is always backed by the mysql driver.
type DB struct {
	*sql.DB
}

// ErrNoRows is returned by Scan when QueryRow doesn't return a
// row. In such a case, QueryRow returns a placeholder *Row value that
// defers this error until a Scan.
var ErrNoRows = sql.ErrNoRows

// Open opens a resty mysql database from a driver DSN.
//
// The DSN is normalized before connecting: clientFoundRows is forced so
// that UPDATE reports the number of matched rows, not the number of
// changed rows. Callers rely on zero affected rows meaning "no such row".
func Open(dataSourceName string) (*DB, error) {
	cfg, err := mysql.ParseDSN(dataSourceName)
	if err != nil {
		return nil, err
	}
	cfg.ClientFoundRows = true
	cfg.ParseTime = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{DB: db}, nil
}

// IsUniqueViolation reports whether err is the mysql duplicate-entry
// error raised when a unique constraint is hit.
func IsUniqueViolation(err error) bool {
	if merr, ok := err.(*mysql.MySQLError); ok {
		return merr.Number == 1062
	}
	return false
}
