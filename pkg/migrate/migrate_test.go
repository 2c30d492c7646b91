package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippedMigrationsAreValid(t *testing.T) {
	files, err := ValidateDir("migrations")
	require.NoError(t, err)
	require.Len(t, files, 5)
	assert.True(t, strings.HasSuffix(files[0], "_create_users_table.sql"))
	assert.True(t, strings.HasSuffix(files[3], "_create_orders_table.sql"))
	assert.True(t, strings.HasSuffix(files[4], "_add_cart_item_unit_price.sql"))
}

func TestMigrationsDeclareCoreSchema(t *testing.T) {
	checks := map[string][]string{
		"*_create_users_table.sql": {
			"CREATE TABLE IF NOT EXISTS users",
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email_active ON users (email) WHERE deleted_at IS NULL",
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_users_phone_active ON users (phone) WHERE deleted_at IS NULL",
		},
		"*_create_carts_table.sql": {
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_user_id ON carts (user_id)",
			"ON DELETE CASCADE",
		},
		"*_add_cart_item_unit_price.sql": {
			"ADD COLUMN IF NOT EXISTS unit_price numeric(14,2) NOT NULL DEFAULT 0",
		},
		"*_create_orders_table.sql": {
			"cancellable boolean NOT NULL DEFAULT true",
			"CHECK (status IN ('pending', 'completed', 'cancelled'))",
		},
	}

	for pattern, wants := range checks {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		require.NoError(t, err)
		require.Len(t, matches, 1, pattern)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		for _, want := range wants {
			assert.Contains(t, string(data), want, pattern)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "Add Order Notes!", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20250601083000_add_order_notes.sql"), path)

	files, err := ValidateDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"20250601083000_add_order_notes.sql"}, files)

	_, err = CreateSQLMigration(dir, "add order notes", now)
	assert.Error(t, err, "same version and name must not be overwritten")

	_, err = CreateSQLMigration(dir, "!!!", now)
	assert.Error(t, err)
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	cases := map[string]string{
		"bad_name.sql":                  "-- +goose Up\n-- +goose Down\n",
		"20250101000000_no_down.sql":    "-- +goose Up\nSELECT 1;\n",
		"20250101000000_unbalanced.sql": "-- +goose Up\n-- +goose StatementBegin\n-- +goose Down\n",
	}
	for name, body := range cases {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
		_, err := ValidateDir(dir)
		assert.Error(t, err, name)
	}
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("20250301090000")
	require.NoError(t, err)
	assert.Equal(t, int64(20250301090000), v)

	for _, bad := range []string{"", "123", "2025030109000x"} {
		_, err := ParseVersion(bad)
		assert.Error(t, err, bad)
	}
}
