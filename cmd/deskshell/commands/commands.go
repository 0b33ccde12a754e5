package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/deskshell/internal/app/shellapp"
	"github.com/slok/deskshell/internal/conventions"
	"github.com/slok/deskshell/internal/log"
	"github.com/slok/deskshell/internal/printer"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string

	// Shell flags.
	DataDir       string
	ConfigFile    string
	Dev           bool
	ResourcesDir  string
	Backend       string
	BackendArgs   []string
	BackendEnv    []string
	HealthURL     string
	StatusURL     string
	ProbeAttempts int
	ProbeDelay    time.Duration
	Collision     string
	ListenAddr    string
	NoJournal     bool

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	app.Flag("data-dir", fmt.Sprintf("User data directory, the workspace lives inside it (default %s).", conventions.UserDataDir())).StringVar(&c.DataDir)
	app.Flag("config", "Path to a shell configuration file (YAML or TOML).").Short('c').StringVar(&c.ConfigFile)
	app.Flag("dev", "Run the backend from the source tree instead of the bundled resources.").BoolVar(&c.Dev)
	app.Flag("resources-dir", "Bundled resources directory (backend executable and default dataset).").StringVar(&c.ResourcesDir)
	app.Flag("backend", "Backend executable path, overrides the platform location.").StringVar(&c.Backend)
	app.Flag("backend-arg", "Argument passed to the backend. Can be repeated.").StringsVar(&c.BackendArgs)
	app.Flag("backend-env", "Backend environment variable (KEY=VALUE or KEY from current environment). Can be repeated.").StringsVar(&c.BackendEnv)
	app.Flag("health-url", "Backend health endpoint.").StringVar(&c.HealthURL)
	app.Flag("status-url", "Backend status endpoint, defaults to the health endpoint.").StringVar(&c.StatusURL)
	app.Flag("probe-attempts", "Readiness probe attempts before the backend is considered not ready.").IntVar(&c.ProbeAttempts)
	app.Flag("probe-delay", "Wait between failed readiness probe attempts.").DurationVar(&c.ProbeDelay)
	app.Flag("collision", "Upload name collision policy.").EnumVar(&c.Collision, "overwrite", "reject", "rename")
	app.Flag("listen", "Gateway HTTP listen address.").StringVar(&c.ListenAddr)
	app.Flag("no-journal", "Don't persist the backend run journal.").BoolVar(&c.NoJournal)

	return c
}

// newApp loads the configuration and wires the shell.
func (r RootCommand) newApp(ctx context.Context) (*shellapp.App, error) {
	cfg, err := r.AppConfig(ctx)
	if err != nil {
		return nil, err
	}

	app, err := shellapp.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create shell: %w", err)
	}

	return app, nil
}

func newPrinter(format string, w io.Writer) printer.Printer {
	switch format {
	case "json":
		return printer.NewJSONPrinter(w)
	default: // table
		return printer.NewTablePrinter(w)
	}
}
