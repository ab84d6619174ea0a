package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/labworks/seriesdesk/pkg/config"
	"github.com/labworks/seriesdesk/pkg/database"
	"github.com/labworks/seriesdesk/pkg/migrations"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	app := &cli.App{
		Name:  "migrations",
		Usage: "manage the blog database schema",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply every pending migration",
				Action: func(c *cli.Context) error {
					group, err := migrations.BringUpToDate(c.Context, db)
					if err != nil {
						return err
					}
					if group.ID == 0 {
						fmt.Fprintln(c.App.Writer, "blog schema is up to date")
						return nil
					}
					fmt.Fprintf(c.App.Writer, "applied group %d: %s\n", group.ID, group.Migrations)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "undo the last applied group",
				Action: func(c *cli.Context) error {
					group, err := migrations.Rollback(c.Context, db)
					if err != nil {
						return err
					}
					if group.ID == 0 {
						fmt.Fprintln(c.App.Writer, "nothing to roll back")
						return nil
					}
					fmt.Fprintf(c.App.Writer, "rolled back group %d: %s\n", group.ID, group.Migrations)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "show applied migrations and the blog tables",
				Action: func(c *cli.Context) error {
					report, err := migrations.Status(c.Context, db)
					if err != nil {
						return err
					}
					w := c.App.Writer
					fmt.Fprintf(w, "last group: %d\n", report.LastGroup)
					fmt.Fprintf(w, "applied:    %s\n", list(report.Applied))
					fmt.Fprintf(w, "pending:    %s\n", list(report.Unapplied))
					for _, t := range report.Tables {
						if !t.Exists {
							fmt.Fprintf(w, "%-14s missing\n", t.Name)
							continue
						}
						fmt.Fprintf(w, "%-14s %d rows\n", t.Name, t.Rows)
					}
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "write a new Go migration from the blog template",
				ArgsUsage: "<words of the name>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return errors.New("a migration name is required")
					}
					name := strings.Join(c.Args().Slice(), "_")
					mf, err := migrations.NewMigrator(db).CreateGoMigration(
						c.Context,
						name,
						migrate.WithGoTemplate(migrations.Template),
					)
					if err != nil {
						return errors.WithStack(err)
					}
					fmt.Fprintf(c.App.Writer, "created %s (%s)\n", mf.Name, mf.Path)
					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func list(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
