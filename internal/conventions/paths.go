package conventions

import (
	"os"
	"path/filepath"
	"runtime"

	"k8s.io/client-go/util/homedir"
)

const (
	// AppName is the application name, used for the user data directory.
	AppName = "deskshell"
	// FallbackDataDir is the data directory name (relative to home) when the OS has no config dir.
	FallbackDataDir = ".deskshell"

	// Data dir files.

	// WorkspaceDir is the workspace subdirectory of the user data directory.
	WorkspaceDir = "workspace"
	// DBFile is the run journal database filename.
	DBFile = "deskshell.db"
	// BackendLockFile is the lock held while a backend process is owned.
	BackendLockFile = "backend.lock"

	// Workspace files.

	// MarkerFile records that the default dataset was seeded. Only its presence matters.
	MarkerFile = "copy_marker.txt"
	// DefaultDatasetFile is the bundled default dataset filename.
	DefaultDatasetFile = "test_data.csv"

	// Backend.

	// BackendExecutable is the backend server executable name (without platform extension).
	BackendExecutable = "main"
	// DevBackendDir is where the backend executable lives when running from the source tree.
	DevBackendDir = "src/api"
	// DefaultHealthURL is the backend health (and status) endpoint.
	DefaultHealthURL = "http://127.0.0.1:8000/status"

	// DefaultGatewayAddr is where the UI request gateway listens by default.
	DefaultGatewayAddr = "127.0.0.1:8765"
)

// UserDataDir returns the platform user data directory for the application.
func UserDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(homedir.HomeDir(), FallbackDataDir)
}

// DesktopDir returns the user's desktop directory.
func DesktopDir() string {
	return filepath.Join(homedir.HomeDir(), "Desktop")
}

// ResourcesDir returns the directory where bundled resources live, next to the running binary.
func ResourcesDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	dir := filepath.Dir(exe)
	if runtime.GOOS == "darwin" {
		// Inside an app bundle resources live in Contents/Resources.
		if res := filepath.Join(dir, "..", "Resources"); isDir(res) {
			return filepath.Clean(res)
		}
	}
	return dir
}

// ExecutableName returns the backend executable filename for the platform.
func ExecutableName(goos string) string {
	if goos == "windows" {
		return BackendExecutable + ".exe"
	}
	return BackendExecutable
}

// WorkspacePath returns the workspace root for a data directory.
func WorkspacePath(dataDir string) string {
	return filepath.Join(dataDir, WorkspaceDir)
}

// DBPath returns the run journal database path for a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// BackendLockPath returns the backend lock file path for a data directory.
func BackendLockPath(dataDir string) string {
	return filepath.Join(dataDir, BackendLockFile)
}

// DefaultDatasetPath returns the bundled dataset location inside a resources directory.
func DefaultDatasetPath(resourcesDir string) string {
	return filepath.Join(resourcesDir, DefaultDatasetFile)
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
