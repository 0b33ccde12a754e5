package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/slok/deskshell/internal/model"
)

// ConfigRepository loads the shell configuration from YAML, TOML or JSON files.
// JSON files may have comments and trailing commas.
// The format is selected by the file extension.
type ConfigRepository struct {
	fs fs.FS
}

// NewConfigRepository creates a new config file repository.
func NewConfigRepository(filesystem fs.FS) *ConfigRepository {
	return &ConfigRepository{fs: filesystem}
}

// GetConfig loads a shell configuration file and returns a validated domain model.
// Fields missing in the file are left with their zero value.
func (r *ConfigRepository) GetConfig(ctx context.Context, filePath string) (model.ShellConfig, error) {
	data, err := fs.ReadFile(r.fs, filePath)
	if err != nil {
		return model.ShellConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.ShellConfig{}, ctx.Err()
	}

	var cfg ShellConfig
	switch ext := strings.ToLower(path.Ext(filePath)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return model.ShellConfig{}, fmt.Errorf("parsing YAML: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return model.ShellConfig{}, fmt.Errorf("parsing TOML: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return model.ShellConfig{}, fmt.Errorf("parsing JSON: %w", err)
		}
	default:
		return model.ShellConfig{}, fmt.Errorf("unsupported config format %q: %w", ext, model.ErrNotValid)
	}

	m, err := cfg.toModel()
	if err != nil {
		return model.ShellConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return m, nil
}

// ShellConfig represents the config file structure.
type ShellConfig struct {
	Backend   BackendConfig   `yaml:"backend" toml:"backend" json:"backend"`
	Readiness ReadinessConfig `yaml:"readiness" toml:"readiness" json:"readiness"`
	Workspace WorkspaceConfig `yaml:"workspace" toml:"workspace" json:"workspace"`
	Gateway   GatewayConfig   `yaml:"gateway" toml:"gateway" json:"gateway"`
}

// BackendConfig represents the backend section.
type BackendConfig struct {
	Executable string            `yaml:"executable" toml:"executable" json:"executable"`
	Args       []string          `yaml:"args" toml:"args" json:"args"`
	Env        map[string]string `yaml:"env" toml:"env" json:"env"`
	HealthURL  string            `yaml:"health_url" toml:"health_url" json:"health_url"`
	StatusURL  string            `yaml:"status_url" toml:"status_url" json:"status_url"`
}

// ReadinessConfig represents the readiness section. Durations use Go duration syntax (e.g. "500ms").
type ReadinessConfig struct {
	MaxAttempts    int    `yaml:"max_attempts" toml:"max_attempts" json:"max_attempts"`
	Delay          string `yaml:"delay" toml:"delay" json:"delay"`
	AttemptTimeout string `yaml:"attempt_timeout" toml:"attempt_timeout" json:"attempt_timeout"`
}

// WorkspaceConfig represents the workspace section.
type WorkspaceConfig struct {
	DataDir   string `yaml:"data_dir" toml:"data_dir" json:"data_dir"`
	Dataset   string `yaml:"dataset" toml:"dataset" json:"dataset"`
	Collision string `yaml:"collision" toml:"collision" json:"collision"`
}

// GatewayConfig represents the gateway section.
type GatewayConfig struct {
	Listen string `yaml:"listen" toml:"listen" json:"listen"`
}

func (c ShellConfig) toModel() (model.ShellConfig, error) {
	if c.Readiness.MaxAttempts < 0 {
		return model.ShellConfig{}, fmt.Errorf("readiness max_attempts must not be negative, got: %d", c.Readiness.MaxAttempts)
	}

	delay, err := parseDuration(c.Readiness.Delay)
	if err != nil {
		return model.ShellConfig{}, fmt.Errorf("readiness delay: %w", err)
	}
	attemptTimeout, err := parseDuration(c.Readiness.AttemptTimeout)
	if err != nil {
		return model.ShellConfig{}, fmt.Errorf("readiness attempt_timeout: %w", err)
	}

	collision := model.CollisionPolicy(strings.ToLower(c.Workspace.Collision))
	if collision != "" && !collision.Valid() {
		return model.ShellConfig{}, fmt.Errorf("workspace collision must be one of overwrite, reject or rename, got: %q", c.Workspace.Collision)
	}

	return model.ShellConfig{
		Backend: model.BackendConfig{
			Executable: c.Backend.Executable,
			Args:       c.Backend.Args,
			Env:        c.Backend.Env,
			HealthURL:  c.Backend.HealthURL,
			StatusURL:  c.Backend.StatusURL,
		},
		Readiness: model.ReadinessConfig{
			MaxAttempts:    c.Readiness.MaxAttempts,
			Delay:          delay,
			AttemptTimeout: attemptTimeout,
		},
		Workspace: model.WorkspaceConfig{
			DataDir:   c.Workspace.DataDir,
			Dataset:   c.Workspace.Dataset,
			Collision: collision,
		},
		Gateway: model.GatewayConfig{
			ListenAddr: c.Gateway.Listen,
		},
	}, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative, got: %s", s)
	}
	return d, nil
}
