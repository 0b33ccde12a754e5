package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/alecthomas/kingpin/v2"
)

type ReadCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	fileName string
}

// NewReadCommand returns the read command.
func NewReadCommand(rootCmd *RootCommand, app *kingpin.Application) *ReadCommand {
	c := &ReadCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("read", "Print the content of a workspace file.")
	c.Cmd.Arg("file-name", "File path relative to the workspace root.").Required().StringVar(&c.fileName)

	return c
}

func (c ReadCommand) Name() string { return c.Cmd.FullCommand() }

func (c ReadCommand) Run(ctx context.Context) error {
	app, err := c.rootCmd.newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	content, err := app.Gateway.ReadFile(ctx, c.fileName)
	if err != nil {
		return fmt.Errorf("could not read file: %w", err)
	}

	if _, err := io.WriteString(c.rootCmd.Stdout, content); err != nil {
		return fmt.Errorf("could not write content: %w", err)
	}

	return nil
}
