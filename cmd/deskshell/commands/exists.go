package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/deskshell/internal/gateway"
)

type ExistsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	fileName    string
	destination string
}

// NewExistsCommand returns the exists command.
func NewExistsCommand(rootCmd *RootCommand, app *kingpin.Application) *ExistsCommand {
	c := &ExistsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("exists", "Check if a file exists in the workspace.")
	c.Cmd.Arg("file-name", "File name.").Required().StringVar(&c.fileName)
	c.Cmd.Flag("destination", "Workspace directory, defaults to the workspace root.").Short('d').StringVar(&c.destination)

	return c
}

func (c ExistsCommand) Name() string { return c.Cmd.FullCommand() }

func (c ExistsCommand) Run(ctx context.Context) error {
	app, err := c.rootCmd.newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	exists, err := app.Gateway.CheckFileExists(ctx, gateway.CheckRequest{
		FileName:    c.fileName,
		Destination: c.destination,
	})
	if err != nil {
		return fmt.Errorf("could not check file: %w", err)
	}

	p := newPrinter("table", c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("%t", exists)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
