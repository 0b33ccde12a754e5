package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/deskshell/internal/model"
)

// JSONPrinter prints shell information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type runOutput struct {
	ID         string     `json:"id"`
	Executable string     `json:"executable"`
	PID        int        `json:"pid,omitempty"`
	Status     string     `json:"status"`
	ExitCode   *int       `json:"exit_code"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at"`
}

type statusOutput struct {
	HealthURL string          `json:"health_url"`
	Ready     bool            `json:"ready"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	LastRun   *runOutput      `json:"last_run"`
}

type pathsOutput struct {
	StorageRoot string `json:"storage_root"`
	DataPath    string `json:"data_path"`
	DesktopPath string `json:"desktop_path"`
}

type messageOutput struct {
	Message string `json:"message"`
}

func toRunOutput(r model.ServerRun) runOutput {
	out := runOutput{
		ID:         r.ID,
		Executable: r.Executable,
		PID:        r.PID,
		Status:     string(r.Status),
		ExitCode:   r.ExitCode,
		Error:      r.Error,
		StartedAt:  r.StartedAt.UTC(),
	}
	if r.EndedAt != nil {
		utcTime := r.EndedAt.UTC()
		out.EndedAt = &utcTime
	}
	return out
}

// PrintFiles prints workspace files.
func (j *JSONPrinter) PrintFiles(files []model.FileEntry) error {
	if files == nil {
		files = []model.FileEntry{}
	}
	return j.encode(files)
}

// PrintRuns prints the run journal.
func (j *JSONPrinter) PrintRuns(runs []model.ServerRun) error {
	items := make([]runOutput, 0, len(runs))
	for _, r := range runs {
		items = append(items, toRunOutput(r))
	}
	return j.encode(items)
}

// PrintStatus prints the backend status.
func (j *JSONPrinter) PrintStatus(status Status) error {
	out := statusOutput{
		HealthURL: status.HealthURL,
		Ready:     status.Ready,
		Payload:   status.Payload,
	}
	if status.LastRun != nil {
		r := toRunOutput(*status.LastRun)
		out.LastRun = &r
	}
	return j.encode(out)
}

// PrintPaths prints the shell locations.
func (j *JSONPrinter) PrintPaths(paths Paths) error {
	return j.encode(pathsOutput{
		StorageRoot: paths.StorageRoot,
		DataPath:    paths.DataPath,
		DesktopPath: paths.DesktopPath,
	})
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
