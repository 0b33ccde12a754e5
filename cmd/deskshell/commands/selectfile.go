package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type SelectCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewSelectCommand returns the select command.
func NewSelectCommand(rootCmd *RootCommand, app *kingpin.Application) *SelectCommand {
	c := &SelectCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("select", "Open the OS file picker and print the selected path.")

	return c
}

func (c SelectCommand) Name() string { return c.Cmd.FullCommand() }

func (c SelectCommand) Run(ctx context.Context) error {
	app, err := c.rootCmd.newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	path, err := app.Gateway.SelectFile(ctx)
	if err != nil {
		return fmt.Errorf("could not select file: %w", err)
	}

	// Cancelled, nothing to print.
	if path == nil {
		return nil
	}

	p := newPrinter("table", c.rootCmd.Stdout)
	if err := p.PrintMessage(*path); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
