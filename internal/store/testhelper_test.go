package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"

	"github.com/sweetshop/apiserver/config"
	"github.com/sweetshop/apiserver/internal/db"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// A unique name derived from t.Name() ensures isolation between tests.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Percent-encode the test name so it's a safe SQLite URI filename
	// component and cannot be misinterpreted as query parameters.
	safeName := url.PathEscape(t.Name())
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		safeName,
	)

	dbConn, err := db.OpenSQLite(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.RunMigrations(dbConn, config.DriverSQLite); err != nil {
		_ = dbConn.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = dbConn.Close() })

	return dbConn
}
