// Package picker opens the native OS file selection dialog.
package picker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ncruces/zenity"

	"github.com/slok/deskshell/internal/log"
)

// FilePicker asks the user for a file. An empty path means the user cancelled.
type FilePicker interface {
	SelectFile(ctx context.Context) (string, error)
}

// DialogFunc shows a file selection dialog, like zenity.SelectFile.
type DialogFunc func(options ...zenity.Option) (string, error)

// OSPickerConfig is the configuration for the OS picker.
type OSPickerConfig struct {
	Title string
	// StartDir is the directory the dialog opens in, optional.
	StartDir string
	// Dialog is optional, defaults to zenity.SelectFile.
	Dialog DialogFunc
	Logger log.Logger
}

func (c *OSPickerConfig) defaults() error {
	if c.Title == "" {
		c.Title = "Select a file"
	}
	if c.Dialog == nil {
		c.Dialog = zenity.SelectFile
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "picker.OSPicker"})
	return nil
}

// OSPicker shows the platform file dialog: native on Windows and macOS, zenity
// or qarma on other desktops.
type OSPicker struct {
	cfg OSPickerConfig
}

// NewOSPicker returns a new OS picker.
func NewOSPicker(cfg OSPickerConfig) (*OSPicker, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &OSPicker{cfg: cfg}, nil
}

// SelectFile satisfies FilePicker.
func (p *OSPicker) SelectFile(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("could not open file dialog: %w", err)
	}

	opts := []zenity.Option{
		zenity.Title(p.cfg.Title),
		zenity.Context(ctx),
	}
	if p.cfg.StartDir != "" {
		// A trailing separator makes the dialog open inside the directory.
		opts = append(opts, zenity.Filename(filepath.Clean(p.cfg.StartDir)+string(filepath.Separator)))
	}

	p.cfg.Logger.Debugf("Opening file dialog")
	path, err := p.cfg.Dialog(opts...)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			p.cfg.Logger.Debugf("File selection cancelled")
			return "", nil
		}
		return "", fmt.Errorf("could not open file dialog: %w", err)
	}

	path = strings.TrimSpace(path)
	if path == "" {
		p.cfg.Logger.Debugf("File selection cancelled")
	}
	return path, nil
}
