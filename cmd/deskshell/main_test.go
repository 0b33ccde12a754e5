package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), append([]string{"deskshell"}, args...), nil, &stdout, &stderr)
	return stdout.String(), err
}

func TestCLIWorkspaceCommands(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tmp := t.TempDir()
	dataDir := filepath.Join(tmp, "data")
	global := []string{"--data-dir", dataDir, "--resources-dir", filepath.Join(tmp, "resources"), "--no-log"}
	cli := func(args ...string) (string, error) {
		return runCLI(t, append(append([]string{}, global...), args...)...)
	}

	// Paths creates the workspace.
	out, err := cli("paths", "--format", "json")
	require.NoError(err)
	var paths struct {
		StorageRoot string `json:"storage_root"`
		DataPath    string `json:"data_path"`
	}
	require.NoError(json.Unmarshal([]byte(out), &paths))
	assert.Equal(dataDir, paths.StorageRoot)
	assert.Equal(filepath.Join(dataDir, "workspace"), paths.DataPath)
	assert.DirExists(paths.DataPath)

	src := filepath.Join(tmp, "x.csv")
	require.NoError(os.WriteFile(src, []byte("hello"), 0o644))

	out, err = cli("upload", src)
	require.NoError(err)
	assert.Equal("Uploaded file: "+filepath.Join(paths.DataPath, "x.csv")+"\n", out)

	out, err = cli("ls", "--format", "json")
	require.NoError(err)
	assert.JSONEq(`[{"name":"x.csv","size":5}]`, out)

	out, err = cli("exists", "x.csv")
	require.NoError(err)
	assert.Equal("true\n", out)

	out, err = cli("exists", "missing.csv")
	require.NoError(err)
	assert.Equal("false\n", out)

	out, err = cli("read", "x.csv")
	require.NoError(err)
	assert.Equal("hello", out)

	_, err = cli("read", "missing.csv")
	assert.Error(err)

	out, err = cli("runs", "--format", "json")
	require.NoError(err)
	assert.JSONEq(`[]`, out)
}

func TestCLIInvalidArgs(t *testing.T) {
	tests := map[string]struct {
		args []string
	}{
		"Unknown command should fail": {
			args: []string{"unknown"},
		},
		"Unknown collision policy should fail": {
			args: []string{"--collision", "merge", "paths"},
		},
		"Upload without a file should fail": {
			args: []string{"upload"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := runCLI(t, append([]string{"--data-dir", t.TempDir(), "--no-log"}, test.args...)...)
			assert.Error(t, err)
		})
	}
}
