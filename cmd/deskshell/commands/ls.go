package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type LsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	directory string
	format    string
}

// NewLsCommand returns the ls command.
func NewLsCommand(rootCmd *RootCommand, app *kingpin.Application) *LsCommand {
	c := &LsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("ls", "List the files of a workspace directory.")
	c.Cmd.Arg("directory", "Workspace directory, defaults to the workspace root.").StringVar(&c.directory)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c LsCommand) Name() string { return c.Cmd.FullCommand() }

func (c LsCommand) Run(ctx context.Context) error {
	app, err := c.rootCmd.newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	files, err := app.Gateway.ListFiles(ctx, c.directory)
	if err != nil {
		return fmt.Errorf("could not list files: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintFiles(files); err != nil {
		return fmt.Errorf("could not print files: %w", err)
	}

	return nil
}
