// Package testutils holds helpers shared by the package tests.
package testutils

import (
	"context"
	"testing"

	"github.com/labworks/seriesdesk/pkg/config"
	"github.com/labworks/seriesdesk/pkg/database"
	"github.com/labworks/seriesdesk/pkg/migrations"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// NewDB opens a migrated in-memory database that is closed when the test
// finishes.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()

	cfg := config.NewForTest()
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	return db
}
