package data

import (
	"database/sql"
	"embed"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	DataFileName string = "references.db"

	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")

	placeholderRegex = regexp.MustCompile(`\?`)
)

// driverFor picks the driver for a DSN: postgres:// URLs use lib/pq, anything else is a
// sqlite file path.
func driverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return driverPostgres
	}
	return driverSQLite
}

// Init creates the schema in the database at dsn. It is safe to run repeatedly.
func Init(dsn string) error {
	if dsn == "" {
		return errors.New("database DSN not specified")
	}

	db, err := GetDB(dsn)
	if err != nil {
		return errors.Wrapf(err, "error opening database: %s", Redact(dsn))
	}
	defer db.Close()

	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		return errors.Wrap(err, "failed to read the schema creation file")
	}
	if _, err := db.Exec(string(b)); err != nil {
		return errors.Wrapf(err, "failed to create database schema in: %s", Redact(dsn))
	}
	slog.Debug("db schema ready", "driver", driverFor(dsn))
	return nil
}

// GetDB opens the database at dsn.
func GetDB(dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driverFor(dsn), dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", Redact(dsn))
	}
	return conn, nil
}

func isPostgres(db *sql.DB) bool {
	_, ok := db.Driver().(*pq.Driver)
	return ok
}

// rebind rewrites ? placeholders to $n for Postgres.
func rebind(db *sql.DB, query string) string {
	if !isPostgres(db) {
		return query
	}
	n := 0
	return placeholderRegex.ReplaceAllStringFunc(query, func(string) string {
		n++
		return "$" + strconv.Itoa(n)
	})
}

// Redact hides the password of a postgres URL.
func Redact(dsn string) string {
	if driverFor(dsn) != driverPostgres {
		return dsn
	}
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		creds = creds[:i] + ":***"
	}
	return dsn[:scheme+3] + creds + dsn[at:]
}
