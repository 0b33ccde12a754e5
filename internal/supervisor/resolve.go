package supervisor

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/slok/deskshell/internal/conventions"
	"github.com/slok/deskshell/internal/model"
)

// ExecutableResolver knows where the backend executable lives.
type ExecutableResolver interface {
	ResolveExecutable() (string, error)
}

// ResolverFunc is a helper to use functions as ExecutableResolver.
type ResolverFunc func() (string, error)

// ResolveExecutable satisfies ExecutableResolver.
func (r ResolverFunc) ResolveExecutable() (string, error) { return r() }

// PlatformResolver resolves the backend executable the way a packaged desktop app lays it out:
// next to the bundled resources, or in the source tree when running in development mode.
type PlatformResolver struct {
	// Override is an explicit executable path, when set the rest of the fields are ignored.
	Override string
	// Dev selects DevDir instead of ResourcesDir.
	Dev          bool
	DevDir       string
	ResourcesDir string
	// GOOS is optional, defaults to the running platform.
	GOOS string
}

// ResolveExecutable satisfies ExecutableResolver. It doesn't check the path exists.
func (p PlatformResolver) ResolveExecutable() (string, error) {
	if p.Override != "" {
		return filepath.Abs(p.Override)
	}

	dir := p.ResourcesDir
	if p.Dev {
		dir = p.DevDir
	}
	if dir == "" {
		return "", fmt.Errorf("backend executable directory is not configured: %w", model.ErrNotValid)
	}

	goos := p.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	return filepath.Abs(filepath.Join(dir, conventions.ExecutableName(goos)))
}
