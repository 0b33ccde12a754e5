package model

import "time"

// ShellConfig is the application configuration.
type ShellConfig struct {
	Backend   BackendConfig
	Readiness ReadinessConfig
	Workspace WorkspaceConfig
	Gateway   GatewayConfig
}

// BackendConfig configures the supervised backend server.
type BackendConfig struct {
	// Executable overrides the platform resolved executable path.
	Executable string
	Args       []string
	Env        map[string]string
	HealthURL  string
	StatusURL  string
}

// ReadinessConfig configures the backend readiness probe policy.
type ReadinessConfig struct {
	MaxAttempts    int
	Delay          time.Duration
	AttemptTimeout time.Duration
}

// WorkspaceConfig configures the workspace store.
type WorkspaceConfig struct {
	DataDir   string
	Dataset   string
	Collision CollisionPolicy
}

// GatewayConfig configures the UI request gateway transport.
type GatewayConfig struct {
	ListenAddr string
}
