package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/labworks/seriesdesk/pkg/config"
	"github.com/labworks/seriesdesk/pkg/series"
	"github.com/labworks/seriesdesk/pkg/seriesview"
	"github.com/labworks/seriesdesk/pkg/tui"
	"github.com/labworks/seriesdesk/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	pageFlag := &cli.StringFlag{
		Name:  "page",
		Value: "0",
		Usage: "zero-based page to open; anything that isn't a page number lists from the start",
	}

	app := &cli.App{
		Name:    "series",
		Usage:   "browse the remote series catalog",
		Version: version.Version,
		Commands: []*cli.Command{
			{
				Name:   "browse",
				Usage:  "open the interactive series browser",
				Flags:  []cli.Flag{pageFlag},
				Action: browse,
			},
			{
				Name:  "list",
				Usage: "print one page of series",
				Flags: []cli.Flag{
					pageFlag,
					&cli.StringFlag{Name: "search", Usage: "only series whose title starts with this text"},
					&cli.BoolFlag{Name: "json", Usage: "print the page as JSON"},
				},
				Action: list,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func setup(c *cli.Context) (context.Context, *series.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	client, err := series.NewClient(series.ClientConfig{
		BaseURL:    cfg.SeriesAPIBaseURL,
		PublicKey:  cfg.SeriesAPIPublicKey,
		PrivateKey: cfg.SeriesAPIPrivateKey,
		Timeout:    cfg.SeriesAPITimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	ctx := logger.NewWithLevel(cfg.TUILogLevel).WithContext(c.Context)
	return ctx, client, nil
}

func browse(c *cli.Context) error {
	ctx, client, err := setup(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := tui.New(ctx, client, c.String("page"))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	cancel()
	m.Wait()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return errors.WithStack(err)
}

type listOutput struct {
	Page      int           `json:"page"`
	PageCount int           `json:"page_count"`
	Total     int           `json:"total"`
	Items     []series.Item `json:"items"`
}

func list(c *cli.Context) error {
	ctx, client, err := setup(c)
	if err != nil {
		return err
	}

	ctrl := seriesview.New(client, seriesview.Options{SearchText: c.String("search")})
	ctrl.Mount(ctx, c.String("page"))
	ctrl.Wait()

	s := ctrl.State()
	if s.HasError {
		return errors.Errorf("failed to load series page %q", c.String("page"))
	}

	if c.Bool("json") {
		out := listOutput{
			Page:      s.CurrentPage,
			PageCount: s.PageCount,
			Total:     s.Response.Total,
			Items:     s.Items,
		}
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return errors.WithStack(enc.Encode(out))
	}

	return printCards(c.App.Writer, s)
}

func printCards(w io.Writer, s seriesview.ViewState) error {
	styles := tui.NewStyles()

	if s.NoResults() {
		_, err := fmt.Fprintln(w, styles.Empty.Render("Oops! No result found."))
		return errors.WithStack(err)
	}
	for _, item := range s.Items {
		if _, err := fmt.Fprintf(w, "%s  %s\n", styles.MutedText.Render(fmt.Sprintf("#%-6d", item.ID)), styles.CardTitle.Render(item.Title)); err != nil {
			return errors.WithStack(err)
		}
	}
	_, err := fmt.Fprintf(w, "page %d of %d, %d results\n", s.CurrentPage+1, s.PageCount, s.Response.Total)
	return errors.WithStack(err)
}
