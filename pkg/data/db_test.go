package data

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	err := Init(dbPath)
	require.NoError(t, err)
	db, err := GetDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInit_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	err := Init(dbPath)
	require.NoError(t, err)
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestInit_EmptyPath(t *testing.T) {
	err := Init("")
	assert.Error(t, err)
}

func TestInit_SchemaVersion(t *testing.T) {
	db := setupTestDB(t)

	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	assert.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestInit_Idempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	require.NoError(t, Init(dbPath))
	assert.NoError(t, Init(dbPath))
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, driverPostgres, driverFor("postgres://u:p@localhost:5432/who"))
	assert.Equal(t, driverPostgres, driverFor("postgresql://localhost/who"))
	assert.Equal(t, driverSQLite, driverFor("/tmp/references.db"))
	assert.Equal(t, driverSQLite, driverFor("file:ref.db?cache=shared"))
}

func TestRebind(t *testing.T) {
	db := setupTestDB(t)
	q := "SELECT * FROM reference_row WHERE sex = ? AND standard = ?"
	assert.Equal(t, q, rebind(db, q), "sqlite keeps ? placeholders")

	pg, err := GetDB("postgres://u:p@localhost:5432/who?sslmode=disable")
	require.NoError(t, err)
	defer pg.Close()
	assert.Equal(t, "SELECT * FROM reference_row WHERE sex = $1 AND standard = $2", rebind(pg, q))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "postgres://who:***@db:5432/who", Redact("postgres://who:secret@db:5432/who"))
	assert.Equal(t, "postgres://db/who", Redact("postgres://db/who"))
	assert.Equal(t, "/tmp/x.db", Redact("/tmp/x.db"))
}
