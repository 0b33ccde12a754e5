package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"

	"github.com/slok/deskshell/internal/gateway"
)

// gatewayShutdownTimeout bounds the in-flight UI requests on exit.
const gatewayShutdownTimeout = 5 * time.Second

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	exitWithBackend bool
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run the shell: prepare the workspace, start the backend and serve the UI gateway.").Default()
	c.Cmd.Flag("exit-with-backend", "Stop the shell when the backend exits.").BoolVar(&c.exitWithBackend)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	app, err := c.rootCmd.newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	srv, err := gateway.NewServer(gateway.ServerConfig{
		ListenAddr: app.Config.Shell.Gateway.ListenAddr,
		Handler:    app.Handler(),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create gateway server: %w", err)
	}

	if err := app.Host.Start(ctx); err != nil {
		return fmt.Errorf("could not start shell: %w", err)
	}
	defer app.Host.Shutdown()

	var g run.Group

	// UI gateway.
	g.Add(
		func() error {
			return srv.ListenAndServe()
		},
		func(_ error) {
			ctx, cancel := context.WithTimeout(context.Background(), gatewayShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warningf("Could not shutdown gateway gracefully: %v", err)
			}
		},
	)

	// Shell lifetime.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				<-ctx.Done()
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	if c.exitWithBackend {
		stop := make(chan struct{})
		g.Add(
			func() error {
				select {
				case <-app.Host.Done():
					st := app.Host.Status()
					logger.Infof("Backend finished with state %s", st.State)
				case <-stop:
				}
				return nil
			},
			func(_ error) {
				close(stop)
			},
		)
	}

	return g.Run()
}
