package migrations

import (
	"context"
	"testing"

	"github.com/labworks/seriesdesk/pkg/config"
	"github.com/labworks/seriesdesk/pkg/database"
	"github.com/labworks/seriesdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestStatus_BeforeMigrating(t *testing.T) {
	db := newTestDB(t)

	report, err := Status(context.Background(), db)
	require.NoError(t, err)

	assert.Empty(t, report.Applied)
	assert.Len(t, report.Unapplied, 1)
	assert.Equal(t, int64(0), report.LastGroup)
	assert.Equal(t, []TableStatus{
		{Name: "blog_posts"},
		{Name: "blog_comments"},
	}, report.Tables)
}

func TestBringUpToDate_StatusAndRollback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	group, err := BringUpToDate(ctx, db)
	require.NoError(t, err)
	require.NotZero(t, group.ID)

	_, err = db.NewInsert().Model(&models.BlogPost{Title: "Hello", Body: "World"}).Exec(ctx)
	require.NoError(t, err)

	report, err := Status(ctx, db)
	require.NoError(t, err)
	assert.Len(t, report.Applied, 1)
	assert.Empty(t, report.Unapplied)
	assert.Equal(t, group.ID, report.LastGroup)
	assert.Equal(t, []TableStatus{
		{Name: "blog_posts", Exists: true, Rows: 1},
		{Name: "blog_comments", Exists: true, Rows: 0},
	}, report.Tables)

	t.Run("nothing pending", func(t *testing.T) {
		again, err := BringUpToDate(ctx, db)
		require.NoError(t, err)
		assert.Zero(t, again.ID)
	})

	t.Run("rollback drops the blog tables", func(t *testing.T) {
		rolled, err := Rollback(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, group.ID, rolled.ID)

		report, err := Status(ctx, db)
		require.NoError(t, err)
		assert.Len(t, report.Unapplied, 1)
		for _, ts := range report.Tables {
			assert.False(t, ts.Exists, ts.Name)
		}

		rolled, err = Rollback(ctx, db)
		require.NoError(t, err)
		assert.Zero(t, rolled.ID)
	})
}
