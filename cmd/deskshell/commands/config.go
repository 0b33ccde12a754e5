package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/deskshell/internal/app/shellapp"
	"github.com/slok/deskshell/internal/model"
	"github.com/slok/deskshell/internal/storage/io"
	utilsenv "github.com/slok/deskshell/internal/utils/env"
)

// AppConfig returns the shell configuration: the config file (if any) with the
// flags set on top of it. Unset values are left for the shell defaults.
func (r RootCommand) AppConfig(ctx context.Context) (shellapp.Config, error) {
	var sc model.ShellConfig
	if r.ConfigFile != "" {
		path, err := filepath.Abs(r.ConfigFile)
		if err != nil {
			return shellapp.Config{}, fmt.Errorf("could not resolve config path: %w", err)
		}

		repo := io.NewConfigRepository(os.DirFS(filepath.Dir(path)))
		sc, err = repo.GetConfig(ctx, filepath.Base(path))
		if err != nil {
			return shellapp.Config{}, fmt.Errorf("could not load config: %w", err)
		}
	}

	cliEnv, err := utilsenv.ParseSpecs(r.BackendEnv, os.LookupEnv)
	if err != nil {
		return shellapp.Config{}, fmt.Errorf("invalid --backend-env value: %w", err)
	}
	sc.Backend.Env = utilsenv.Merge(sc.Backend.Env, cliEnv)

	if len(r.BackendArgs) > 0 {
		sc.Backend.Args = r.BackendArgs
	}
	setString(&sc.Backend.Executable, r.Backend)
	setString(&sc.Backend.HealthURL, r.HealthURL)
	setString(&sc.Backend.StatusURL, r.StatusURL)
	setString(&sc.Gateway.ListenAddr, r.ListenAddr)
	if r.ProbeAttempts != 0 {
		sc.Readiness.MaxAttempts = r.ProbeAttempts
	}
	if r.ProbeDelay != 0 {
		sc.Readiness.Delay = r.ProbeDelay
	}
	if r.Collision != "" {
		sc.Workspace.Collision = model.CollisionPolicy(r.Collision)
	}
	setString(&sc.Workspace.DataDir, r.DataDir)

	return shellapp.Config{
		Shell:          sc,
		Dev:            r.Dev,
		ResourcesDir:   r.ResourcesDir,
		DisableJournal: r.NoJournal,
		Logger:         r.Logger,
	}, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
