package deskshell_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intdeskshell "github.com/slok/deskshell/test/integration/deskshell"
)

// runItem matches the JSON output of `deskshell runs --format json`.
type runItem struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	ExitCode *int   `json:"exit_code"`
}

func newEnv(t *testing.T, backendScript string) intdeskshell.Env {
	t.Helper()
	dir := t.TempDir()
	env := intdeskshell.Env{
		DataDir:      filepath.Join(dir, "data"),
		ResourcesDir: filepath.Join(dir, "resources"),
	}
	require.NoError(t, os.MkdirAll(env.ResourcesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.ResourcesDir, "test_data.csv"), []byte("id,value\n1,10\n"), 0o644))
	if backendScript != "" {
		require.NoError(t, os.WriteFile(filepath.Join(env.ResourcesDir, "main"), []byte("#!/bin/sh\n"+backendScript+"\n"), 0o755))
	}
	return env
}

func ipc(t *testing.T, addr, op, body string) (int, []byte) {
	t.Helper()
	resp, err := http.Post(fmt.Sprintf("http://%s/ipc/%s", addr, op), "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func waitGateway(t *testing.T, addr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := http.Post(fmt.Sprintf("http://%s/ipc/get-storage-root", addr), "application/json", nil)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 100*time.Millisecond)
}

func TestIntegrationRunLifecycle(t *testing.T) {
	config := intdeskshell.NewConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// The backend status endpoint.
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer backend.Close()

	env := newEnv(t, "exec sleep 60")
	addr, err := intdeskshell.FreeAddr()
	require.NoError(t, err)

	cmd, err := intdeskshell.StartRun(ctx, config, env,
		"--listen", addr,
		"--health-url", backend.URL+"/status",
		"--probe-attempts", "5",
		"--probe-delay", "100ms",
	)
	require.NoError(t, err)
	waitGateway(t, addr)

	// Seeded workspace.
	code, body := ipc(t, addr, "list-files", `{"directory":""}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[{"name":"test_data.csv","size":14}]`, string(body))

	code, body = ipc(t, addr, "fetch-status", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	code, _ = ipc(t, addr, "read-file", `{"fileName":"../deskshell.db"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	// Graceful stop terminates the backend.
	require.NoError(t, cmd.Process.Signal(syscall.SIGTERM))
	require.NoError(t, cmd.Wait())

	stdout, stderr, err := intdeskshell.RunCmd(ctx, config, env, "runs", "--format", "json")
	require.NoError(t, err, "stderr: %s", stderr)
	var runs []runItem
	require.NoError(t, json.Unmarshal(stdout, &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "terminated", runs[0].Status)
	assert.Nil(t, runs[0].ExitCode)
}

func TestIntegrationRunSeedOnce(t *testing.T) {
	config := intdeskshell.NewConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	env := newEnv(t, "exit 3")

	for i := 0; i < 2; i++ {
		addr, err := intdeskshell.FreeAddr()
		require.NoError(t, err)

		cmd, err := intdeskshell.StartRun(ctx, config, env, "--listen", addr, "--exit-with-backend")
		require.NoError(t, err)
		require.NoError(t, cmd.Wait())

		if i == 0 {
			// The user edits the seeded dataset.
			err := os.WriteFile(filepath.Join(env.DataDir, "workspace", "test_data.csv"), []byte("edited"), 0o644)
			require.NoError(t, err)
		}
	}

	stdout, stderr, err := intdeskshell.RunCmd(ctx, config, env, "read", "test_data.csv")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Equal(t, "edited", string(stdout))

	stdout, stderr, err = intdeskshell.RunCmd(ctx, config, env, "runs", "--format", "json")
	require.NoError(t, err, "stderr: %s", stderr)
	var runs []runItem
	require.NoError(t, json.Unmarshal(stdout, &runs))
	require.Len(t, runs, 2)
	for _, r := range runs {
		assert.Equal(t, "exited", r.Status)
		require.NotNil(t, r.ExitCode)
		assert.Equal(t, 3, *r.ExitCode)
	}
}
