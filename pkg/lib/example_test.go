package lib_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/deskshell/pkg/lib"
)

// This example shows the workspace operations without a backend.
func Example_workspace() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "deskshell-example-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	sh, err := lib.New(ctx, lib.Config{
		DataDir:        filepath.Join(dir, "data"),
		ResourcesDir:   filepath.Join(dir, "resources"),
		DisableJournal: true,
	})
	if err != nil {
		panic(err)
	}
	defer sh.Close()

	// Creates the workspace.
	if _, err := sh.DataPath(ctx); err != nil {
		panic(err)
	}

	src := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		panic(err)
	}
	if _, err := sh.UploadFile(ctx, src, ""); err != nil {
		panic(err)
	}

	files, err := sh.ListFiles(ctx, "")
	if err != nil {
		panic(err)
	}
	for _, f := range files {
		fmt.Printf("%s (%d bytes)\n", f.Name, f.Size)
	}

	content, err := sh.ReadFile(ctx, "notes.txt")
	if err != nil {
		panic(err)
	}
	fmt.Println(content)

	// Output:
	// notes.txt (5 bytes)
	// hello
}

// This example shows how a missing backend is reported.
func Example_missingBackend() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "deskshell-example-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	sh, err := lib.New(ctx, lib.Config{
		DataDir:        filepath.Join(dir, "data"),
		ResourcesDir:   filepath.Join(dir, "resources"),
		DisableJournal: true,
	})
	if err != nil {
		panic(err)
	}
	defer sh.Close()

	// The workspace is ready even if the backend can't be launched.
	if err := sh.Start(ctx); err != nil {
		panic(err)
	}
	defer sh.Shutdown()

	fmt.Println(sh.Status().State)

	// Output:
	// failed
}
