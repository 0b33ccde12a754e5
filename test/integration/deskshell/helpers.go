package deskshell

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/slok/deskshell/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "deskshell"
	}

	// go test changes the CWD to the test package directory, so relative paths are useless.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("DESKSHELL_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("deskshell binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "DESKSHELL_INTEGRATION"
		envBinary     = "DESKSHELL_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{Binary: os.Getenv(envBinary)}
	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// Env is a test shell environment: an isolated data dir and resources dir.
type Env struct {
	DataDir      string
	ResourcesDir string
}

func (e Env) globalArgs() []string {
	return []string{"--no-log", "--data-dir", e.DataDir, "--resources-dir", e.ResourcesDir}
}

// RunCmd runs a short lived deskshell command in the test environment.
func RunCmd(ctx context.Context, config Config, env Env, args ...string) (stdout, stderr []byte, err error) {
	return testutils.RunDeskshellArgs(ctx, nil, config.Binary, append(env.globalArgs(), args...), true)
}

// StartRun starts `deskshell run` in the background. The caller stops it with a signal.
func StartRun(ctx context.Context, config Config, env Env, args ...string) (*exec.Cmd, error) {
	cmdArgs := append(env.globalArgs(), "run")
	cmdArgs = append(cmdArgs, args...)
	cmd := testutils.NewDeskshellCmd(ctx, nil, config.Binary, cmdArgs, true)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("could not start deskshell: %w", err)
	}
	return cmd, nil
}

// FreeAddr returns a free local TCP address.
func FreeAddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return l.Addr().String(), nil
}
