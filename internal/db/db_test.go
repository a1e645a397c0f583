package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"storefront-be/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	t.Run("FromParts", func(t *testing.T) {
		cfg := &config.Config{
			DBHost:     "localhost",
			DBUser:     "test_user",
			DBPassword: "test_password",
			DBName:     "test_db",
			DBPort:     "5432",
		}

		expected := "host=localhost user=test_user password=test_password dbname=test_db port=5432 sslmode=disable"
		assert.Equal(t, expected, buildDSN(cfg))
	})

	t.Run("URLWins", func(t *testing.T) {
		cfg := &config.Config{DBHost: "ignored", DBURL: "postgres://u:p@db:5432/shop"}
		assert.Equal(t, "postgres://u:p@db:5432/shop", buildDSN(cfg))
	})
}

func TestNewDatabase_InvalidDriver(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{}, "invalid_driver_name")

	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to connect to DB")
}

func TestNewDatabase_PingFailure(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{}, "mock_driver_failing")

	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to ping DB")
}

func TestNewDatabase_Success(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{DBHost: "localhost"}, "mock_driver_success")
	assert.NoError(t, err)
	assert.NotNil(t, db)
}

func TestMigrate_UnknownCommand(t *testing.T) {
	db, err := sql.Open("mock_driver_success", "")
	assert.NoError(t, err)

	err = Migrate(context.Background(), db, "sideways")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir(migrationsDir)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
}

// --- Mock drivers ---

type mockDriver struct{ pingErr error }

func (m *mockDriver) Open(name string) (driver.Conn, error) {
	return &mockConn{pingErr: m.pingErr}, nil
}

type mockConn struct{ pingErr error }

func (c *mockConn) Prepare(query string) (driver.Stmt, error) { return &mockStmt{}, nil }
func (c *mockConn) Close() error                              { return nil }
func (c *mockConn) Begin() (driver.Tx, error)                 { return nil, nil }
func (c *mockConn) Ping(ctx context.Context) error            { return c.pingErr }

type mockStmt struct{}

func (s *mockStmt) Close() error                                    { return nil }
func (s *mockStmt) NumInput() int                                   { return 0 }
func (s *mockStmt) Exec(args []driver.Value) (driver.Result, error) { return nil, nil }
func (s *mockStmt) Query(args []driver.Value) (driver.Rows, error)  { return nil, nil }

func init() {
	sql.Register("mock_driver_success", &mockDriver{})
	sql.Register("mock_driver_failing", &mockDriver{pingErr: errors.New("connection refused")})
}
