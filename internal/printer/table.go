package printer

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/slok/deskshell/internal/model"
)

// TablePrinter prints shell information as human friendly tables.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

func (t *TablePrinter) newTable(header table.Row, rightAligned ...int) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(t.writer)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, len(rightAligned))
	for _, n := range rightAligned {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw
}

// PrintFiles prints workspace files.
func (t *TablePrinter) PrintFiles(files []model.FileEntry) error {
	if len(files) == 0 {
		return nil
	}

	tw := t.newTable(table.Row{"NAME", "SIZE"}, 2)
	for _, f := range files {
		tw.AppendRow(table.Row{f.Name, FormatBytes(f.Size)})
	}
	tw.Render()

	return nil
}

// PrintRuns prints the backend server run journal.
func (t *TablePrinter) PrintRuns(runs []model.ServerRun) error {
	if len(runs) == 0 {
		return nil
	}

	tw := t.newTable(table.Row{"ID", "STATUS", "PID", "EXIT", "STARTED", "DURATION"}, 3, 4)
	for _, r := range runs {
		pid := "-"
		if r.PID > 0 {
			pid = strconv.Itoa(r.PID)
		}
		exit := "-"
		if r.ExitCode != nil {
			exit = strconv.Itoa(*r.ExitCode)
		}
		duration := "-"
		if r.EndedAt != nil {
			duration = r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		tw.AppendRow(table.Row{r.ID, string(r.Status), pid, exit, TimeAgo(r.StartedAt), duration})
	}
	tw.Render()

	return nil
}

// PrintStatus prints the backend status.
func (t *TablePrinter) PrintStatus(status Status) error {
	ready := "no"
	if status.Ready {
		ready = "yes"
	}

	fmt.Fprintf(t.writer, "Backend:    %s\n", status.HealthURL)
	fmt.Fprintf(t.writer, "Ready:      %s\n", ready)
	if len(status.Payload) > 0 {
		fmt.Fprintf(t.writer, "Status:     %s\n", string(status.Payload))
	}

	if r := status.LastRun; r != nil {
		fmt.Fprintf(t.writer, "Last run:   %s (%s)\n", r.ID, r.Status)
		fmt.Fprintf(t.writer, "Executable: %s\n", r.Executable)
		fmt.Fprintf(t.writer, "Started:    %s\n", FormatTimestamp(r.StartedAt))
		if r.EndedAt != nil {
			fmt.Fprintf(t.writer, "Ended:      %s\n", FormatTimestamp(*r.EndedAt))
		}
		if r.ExitCode != nil {
			fmt.Fprintf(t.writer, "Exit code:  %d\n", *r.ExitCode)
		}
		if r.Error != "" {
			fmt.Fprintf(t.writer, "Error:      %s\n", r.Error)
		}
	}

	return nil
}

// PrintPaths prints the shell locations.
func (t *TablePrinter) PrintPaths(paths Paths) error {
	fmt.Fprintf(t.writer, "Storage root: %s\n", paths.StorageRoot)
	fmt.Fprintf(t.writer, "Data path:    %s\n", paths.DataPath)
	fmt.Fprintf(t.writer, "Desktop path: %s\n", paths.DesktopPath)
	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
