package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		body, err := fs.ReadFile(migrations, f)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", f)
		assert.Contains(t, string(body), "-- +goose Down", f)
	}
}

func TestPendingPaymentsSchema(t *testing.T) {
	body, err := fs.ReadFile(migrations, "migrations/00001_pending_payments.sql")
	require.NoError(t, err)
	schema := string(body)
	for _, col := range []string{"customer_id INTEGER PRIMARY KEY", "payload     JSONB", "expires_at"} {
		assert.True(t, strings.Contains(schema, col), "missing %q", col)
	}
}

func TestConsumedQuotesSchema(t *testing.T) {
	body, err := fs.ReadFile(migrations, "migrations/00002_consumed_quotes.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "quote_id   TEXT PRIMARY KEY")
	assert.Contains(t, string(body), "expires_at TIMESTAMPTZ NOT NULL")
}

func TestNewPool_EmptyURL(t *testing.T) {
	pool, err := NewPool(t.Context(), "")
	require.NoError(t, err)
	assert.Nil(t, pool)
}

func TestNewPool_BadURL(t *testing.T) {
	_, err := NewPool(t.Context(), "postgres://%zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse web db config")
}
