package printer

import (
	"encoding/json"

	"github.com/slok/deskshell/internal/model"
)

// Printer knows how to print shell information in different formats.
type Printer interface {
	PrintFiles(files []model.FileEntry) error
	PrintRuns(runs []model.ServerRun) error
	PrintStatus(status Status) error
	PrintPaths(paths Paths) error
	PrintMessage(msg string) error
}

// Status is the backend status as seen from the shell.
type Status struct {
	HealthURL string
	Ready     bool
	// Payload is the backend status response, only when ready.
	Payload json.RawMessage
	// LastRun is the latest journal run, if any.
	LastRun *model.ServerRun
}

// Paths are the well known shell locations.
type Paths struct {
	StorageRoot string
	DataPath    string
	DesktopPath string
}
