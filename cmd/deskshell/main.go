package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/mattn/go-isatty"
	"github.com/oklog/run"

	"github.com/slok/deskshell/cmd/deskshell/commands"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// quietCommands print tables or JSON on stdout, logs are disabled unless --debug is used.
var quietCommands = map[string]bool{
	"status": true,
	"runs":   true,
	"ls":     true,
	"exists": true,
	"read":   true,
	"paths":  true,
	"select": true,
}

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	app := kingpin.New("deskshell", "Desktop shell host: supervises the backend server and serves the workspace to the UI.")
	app.Version(Version)
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	cmds := map[string]commands.Command{}
	for _, cmd := range []commands.Command{
		commands.NewRunCommand(rootCmd, app),
		commands.NewStatusCommand(rootCmd, app),
		commands.NewRunsCommand(rootCmd, app),
		commands.NewLsCommand(rootCmd, app),
		commands.NewUploadCommand(rootCmd, app),
		commands.NewExistsCommand(rootCmd, app),
		commands.NewReadCommand(rootCmd, app),
		commands.NewPathsCommand(rootCmd, app),
		commands.NewSelectCommand(rootCmd, app),
	} {
		cmds[cmd.Name()] = cmd
	}

	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr
	if quietCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}
	if !isTerminal(stderr) {
		rootCmd.NoColor = true
	}
	rootCmd.Logger = newLogger(*rootCmd, Version)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Infof("Termination signal received, shutting down")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				if err := cmds[cmdName].Run(ctx); err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	if err := Run(context.Background(), os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
