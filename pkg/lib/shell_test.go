package lib_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/deskshell/pkg/lib"
)

type fakePicker struct {
	path string
	err  error
}

func (f fakePicker) SelectFile(ctx context.Context) (string, error) { return f.path, f.err }

// newTestShell creates a shell with temp directories for test isolation.
func newTestShell(t *testing.T, mutate func(c *lib.Config)) (*lib.Shell, lib.Config) {
	t.Helper()

	tmp := t.TempDir()
	cfg := lib.Config{
		DataDir:      filepath.Join(tmp, "data"),
		ResourcesDir: filepath.Join(tmp, "resources"),
		DesktopDir:   filepath.Join(tmp, "Desktop"),
		Picker:       fakePicker{},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	sh, err := lib.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sh.Close() })

	return sh, cfg
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := lib.New(context.Background(), lib.Config{
		DataDir:   t.TempDir(),
		Collision: "merge",
	})
	assert.ErrorIs(t, err, lib.ErrNotValid)
}

func TestShellPaths(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	sh, cfg := newTestShell(t, nil)

	root, err := sh.StorageRoot(ctx)
	require.NoError(err)
	assert.Equal(cfg.DataDir, root)

	desktop, err := sh.DesktopPath(ctx)
	require.NoError(err)
	assert.Equal(cfg.DesktopDir, desktop)

	data, err := sh.DataPath(ctx)
	require.NoError(err)
	assert.Equal(filepath.Join(cfg.DataDir, "workspace"), data)
	assert.DirExists(data)
}

func TestShellWorkspaceErrors(t *testing.T) {
	tests := map[string]struct {
		collision lib.CollisionPolicy
		run       func(ctx context.Context, sh *lib.Shell, src string) error
		expIs     error
	}{
		"Reading a missing file should fail with file not found.": {
			run: func(ctx context.Context, sh *lib.Shell, src string) error {
				_, err := sh.ReadFile(ctx, "missing.csv")
				return err
			},
			expIs: lib.ErrFileNotFound,
		},

		"Reading outside the workspace should fail with not valid.": {
			run: func(ctx context.Context, sh *lib.Shell, src string) error {
				_, err := sh.ReadFile(ctx, "../deskshell.db")
				return err
			},
			expIs: lib.ErrNotValid,
		},

		"Listing a missing directory should fail with directory unreadable.": {
			run: func(ctx context.Context, sh *lib.Shell, src string) error {
				_, err := sh.ListFiles(ctx, "nope")
				return err
			},
			expIs: lib.ErrDirectoryUnreadable,
		},

		"Uploading a missing file should fail with copy failed.": {
			run: func(ctx context.Context, sh *lib.Shell, src string) error {
				_, err := sh.UploadFile(ctx, src+".missing", "")
				return err
			},
			expIs: lib.ErrCopyFailed,
		},

		"Uploading twice with the reject policy should fail with already exists.": {
			collision: lib.CollisionReject,
			run: func(ctx context.Context, sh *lib.Shell, src string) error {
				if _, err := sh.UploadFile(ctx, src, ""); err != nil {
					return err
				}
				_, err := sh.UploadFile(ctx, src, "")
				return err
			},
			expIs: lib.ErrAlreadyExists,
		},

		"Uploading twice with the rename policy should work.": {
			collision: lib.CollisionRename,
			run: func(ctx context.Context, sh *lib.Shell, src string) error {
				if _, err := sh.UploadFile(ctx, src, ""); err != nil {
					return err
				}
				res, err := sh.UploadFile(ctx, src, "")
				if err != nil {
					return err
				}
				if filepath.Base(res.Path) != "x (1).csv" {
					return assert.AnError
				}
				return nil
			},
		},

		"Listing the journal with a negative limit should fail with not valid.": {
			run: func(ctx context.Context, sh *lib.Shell, src string) error {
				_, err := sh.Runs(ctx, &lib.ListRunsOpts{Limit: -1})
				return err
			},
			expIs: lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sh, _ := newTestShell(t, func(c *lib.Config) {
				c.Collision = test.collision
				c.DisableJournal = true
			})
			_, err := sh.DataPath(ctx)
			require.NoError(t, err)

			src := filepath.Join(t.TempDir(), "x.csv")
			require.NoError(t, os.WriteFile(src, []byte("a,b"), 0o644))

			err = test.run(ctx, sh, src)
			if test.expIs != nil {
				assert.ErrorIs(t, err, test.expIs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShellSelectFile(t *testing.T) {
	tests := map[string]struct {
		picker  lib.FilePicker
		expPath *string
	}{
		"A selected file should be returned.": {
			picker:  fakePicker{path: "/home/user/data.csv"},
			expPath: func() *string { s := "/home/user/data.csv"; return &s }(),
		},
		"A cancelled dialog should return a nil path.": {
			picker: fakePicker{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			sh, _ := newTestShell(t, func(c *lib.Config) { c.Picker = test.picker })

			got, err := sh.SelectFile(context.Background())
			require.NoError(t, err)
			assert.Equal(t, test.expPath, got)
		})
	}
}

func TestShellFetchStatus(t *testing.T) {
	tests := map[string]struct {
		handler http.HandlerFunc
		down    bool
		expBody string
	}{
		"A ready backend should return its payload.": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"ok","rows":3}`))
			},
			expBody: `{"status":"ok","rows":3}`,
		},
		"A backend returning invalid data should return a fetch error payload.": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			expBody: `{"error":"failed to fetch data"}`,
		},
		"A down backend should return a not ready payload.": {
			down:    true,
			expBody: `{"error":"backend server is not ready"}`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(test.handler)
			url := srv.URL + "/status"
			if test.down {
				srv.Close()
			} else {
				defer srv.Close()
			}

			sh, _ := newTestShell(t, func(c *lib.Config) {
				c.HealthURL = url
				c.ProbeAttempts = 2
				c.ProbeDelay = time.Millisecond
				c.DisableJournal = true
			})

			got, err := sh.FetchStatus(context.Background())
			require.NoError(t, err)
			assert.JSONEq(t, test.expBody, string(got))
		})
	}
}

func TestShellLifecycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script backends are not supported on windows")
	}
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	resources := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(resources, "test_data.csv"), []byte("x,y\n"), 0o644))
	require.NoError(os.WriteFile(filepath.Join(resources, "main"), []byte("#!/bin/sh\nexec sleep 30\n"), 0o755))

	sh, _ := newTestShell(t, func(c *lib.Config) { c.ResourcesDir = resources })

	require.NoError(sh.Start(ctx))
	st := sh.Status()
	assert.Equal(lib.ServerStateRunning, st.State)
	assert.NotZero(st.PID)

	files, err := sh.ListFiles(ctx, "")
	require.NoError(err)
	assert.Equal([]lib.FileEntry{{Name: "test_data.csv", Size: 4}}, files)

	// Concurrent shutdowns terminate once.
	go sh.Shutdown()
	sh.Shutdown()
	select {
	case <-sh.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("backend didn't exit after shutdown")
	}
	assert.Equal(lib.ServerStateTerminated, sh.Status().State)

	runs, err := sh.Runs(ctx, nil)
	require.NoError(err)
	require.Len(runs, 1)
	assert.Equal(lib.RunStatusTerminated, runs[0].Status)

	terminated := lib.RunStatusTerminated
	runs, err = sh.Runs(ctx, &lib.ListRunsOpts{Status: &terminated, Limit: 1})
	require.NoError(err)
	assert.Len(runs, 1)
}
