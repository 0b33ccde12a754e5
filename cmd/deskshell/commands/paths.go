package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/deskshell/internal/printer"
)

type PathsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewPathsCommand returns the paths command.
func NewPathsCommand(rootCmd *RootCommand, app *kingpin.Application) *PathsCommand {
	c := &PathsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("paths", "Show the storage root, workspace and desktop paths. The workspace is created if missing.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c PathsCommand) Name() string { return c.Cmd.FullCommand() }

func (c PathsCommand) Run(ctx context.Context) error {
	app, err := c.rootCmd.newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	var paths printer.Paths
	if paths.StorageRoot, err = app.Gateway.StorageRoot(ctx); err != nil {
		return fmt.Errorf("could not get storage root: %w", err)
	}
	if paths.DataPath, err = app.Gateway.DataPath(ctx); err != nil {
		return fmt.Errorf("could not get data path: %w", err)
	}
	if paths.DesktopPath, err = app.Gateway.DesktopPath(ctx); err != nil {
		return fmt.Errorf("could not get desktop path: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintPaths(paths); err != nil {
		return fmt.Errorf("could not print paths: %w", err)
	}

	return nil
}
