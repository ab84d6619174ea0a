// Package migrations owns the blog schema: the registered Go migrations and
// the helpers the API and the migrations CLI run them with.
package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

// BlogTables are the tables the migrations manage, parents first.
var BlogTables = []string{"blog_posts", "blog_comments"}

func NewMigrator(db *bun.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, Migrations)
}

// BringUpToDate creates the bookkeeping tables if needed and applies every
// pending migration as one group. A group with ID 0 means nothing was pending.
func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := NewMigrator(db)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}

// Rollback undoes the most recently applied group.
func Rollback(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := NewMigrator(db)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Rollback(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}

type TableStatus struct {
	Name   string
	Exists bool
	Rows   int
}

type Report struct {
	Applied   []string
	Unapplied []string
	LastGroup int64
	Tables    []TableStatus
}

// Status reports which migrations have run and what state the blog tables
// are in.
func Status(ctx context.Context, db *bun.DB) (*Report, error) {
	migrator := NewMigrator(db)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	report := &Report{
		Applied:   []string{},
		Unapplied: []string{},
		LastGroup: ms.LastGroupID(),
	}
	for _, m := range ms {
		if m.IsApplied() {
			report.Applied = append(report.Applied, m.Name)
		} else {
			report.Unapplied = append(report.Unapplied, m.Name)
		}
	}

	for _, name := range BlogTables {
		ts, err := tableStatus(ctx, db, name)
		if err != nil {
			return nil, err
		}
		report.Tables = append(report.Tables, ts)
	}

	return report, nil
}

func tableStatus(ctx context.Context, db *bun.DB, name string) (TableStatus, error) {
	ts := TableStatus{Name: name}

	n, err := db.NewSelect().
		TableExpr("sqlite_master").
		Where("type = 'table'").
		Where("name = ?", name).
		Count(ctx)
	if err != nil {
		return ts, errors.WithStack(err)
	}
	if n == 0 {
		return ts, nil
	}
	ts.Exists = true

	ts.Rows, err = db.NewSelect().TableExpr("?", bun.Ident(name)).Count(ctx)
	return ts, errors.WithStack(err)
}

// Template is the skeleton for new migrations: every statement checked, and
// a down that drops what up created.
const Template = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(` + "`" + `
			CREATE TABLE blog_example (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
` + "`" + `)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(` + "`" + `DROP TABLE IF EXISTS blog_example` + "`" + `)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
