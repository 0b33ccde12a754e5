package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/deskshell/internal/app/status"
	"github.com/slok/deskshell/internal/printer"
)

type StatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	runID    string
	attempts int
	delay    time.Duration
	format   string
}

// NewStatusCommand returns the status command.
func NewStatusCommand(rootCmd *RootCommand, app *kingpin.Application) *StatusCommand {
	c := &StatusCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("status", "Get the backend server status.")
	c.Cmd.Flag("run", "Journal run ID to show, defaults to the latest run.").StringVar(&c.runID)
	c.Cmd.Flag("wait", "Readiness probe attempts before reporting the backend as not ready.").Default("1").IntVar(&c.attempts)
	c.Cmd.Flag("wait-delay", "Wait between readiness probe attempts.").Default("1s").DurationVar(&c.delay)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c StatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatusCommand) Run(ctx context.Context) error {
	app, err := c.rootCmd.newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	// Create status service.
	svc, err := status.NewService(status.ServiceConfig{
		Prober:     app.Prober,
		Fetcher:    app.Gateway,
		Repository: app.Repository,
		HealthURL:  app.Config.Shell.Backend.HealthURL,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute status.
	res, err := svc.Run(ctx, status.Request{
		RunID:    c.runID,
		Attempts: c.attempts,
		Delay:    c.delay,
	})
	if err != nil {
		return fmt.Errorf("could not get backend status: %w", err)
	}

	// Print output.
	p := newPrinter(c.format, c.rootCmd.Stdout)
	if err := p.PrintStatus(printer.Status{
		HealthURL: res.HealthURL,
		Ready:     res.Ready,
		Payload:   res.Payload,
		LastRun:   res.Run,
	}); err != nil {
		return fmt.Errorf("could not print status: %w", err)
	}

	return nil
}
