package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/deskshell/internal/gateway"
)

type UploadCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	filePath    string
	destination string
}

// NewUploadCommand returns the upload command.
func NewUploadCommand(rootCmd *RootCommand, app *kingpin.Application) *UploadCommand {
	c := &UploadCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("upload", "Copy a local file into the workspace.")
	c.Cmd.Arg("file", "Local file path.").Required().StringVar(&c.filePath)
	c.Cmd.Flag("destination", "Workspace directory, defaults to the workspace root.").Short('d').StringVar(&c.destination)

	return c
}

func (c UploadCommand) Name() string { return c.Cmd.FullCommand() }

func (c UploadCommand) Run(ctx context.Context) error {
	app, err := c.rootCmd.newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Gateway.UploadFile(ctx, gateway.UploadRequest{
		FilePath:    c.filePath,
		Destination: c.destination,
	})
	if err != nil {
		return fmt.Errorf("could not upload file: %w", err)
	}

	p := newPrinter("table", c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Uploaded file: %s", res.Path)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
