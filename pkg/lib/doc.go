// Package lib provides a Go SDK to embed the deskshell host in a desktop application.
//
// A desktop GUI process (webview, native toolkit...) uses it to own the backend
// server lifecycle and to serve the workspace operations to its UI, without
// shelling out to the deskshell CLI binary.
//
// # Quick Start
//
// Create a shell, start it and terminate the backend when the window closes:
//
//	sh, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sh.Close()
//
//	if err := sh.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer sh.Shutdown()
//
//	// Blocks until the backend answers (or the attempts are exhausted).
//	status, _ := sh.FetchStatus(ctx)
//
// # Backend Location
//
// The backend executable is resolved from the bundled resources directory
// ([Config].ResourcesDir), from the source tree in development mode
// ([Config].Dev) or from an explicit path ([Config].BackendExecutable).
// Launch failures don't fail [Shell.Start], they are reported by [Shell.Status]
// and recorded in the run journal ([Shell.Runs]).
//
// # Workspace
//
// The workspace is a directory inside [Config].DataDir. On the first run it's
// seeded with the default dataset, a marker file makes sure a user edited copy is
// never overwritten. Every path is resolved inside the workspace, paths escaping
// it fail with [ErrNotValid]:
//
//	files, _ := sh.ListFiles(ctx, "")
//	res, _ := sh.UploadFile(ctx, "/tmp/data.csv", "")
//	content, _ := sh.ReadFile(ctx, "data.csv")
//
// # UI Gateway
//
// [Shell.Handler] serves every operation over HTTP as `POST /ipc/<operation>`
// with JSON bodies, so a webview can call it directly:
//
//	srv := &http.Server{Addr: "127.0.0.1:8765", Handler: sh.Handler()}
//	go srv.ListenAndServe()
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotValid]: Invalid input (e.g. a path outside the workspace).
//   - [ErrFileNotFound]: The workspace file does not exist.
//   - [ErrReadFailed]: The workspace file exists but can't be read.
//   - [ErrCopyFailed]: The upload could not be stored.
//   - [ErrAlreadyExists]: The upload collides and [CollisionReject] is used.
//   - [ErrDirectoryUnreadable]: The workspace directory can't be listed.
//   - [ErrNotFound]: A journal run or the file picker is not available.
//
// # Testing
//
// Use temporary directories, an in-memory journal and a custom picker:
//
//	sh, _ := lib.New(ctx, lib.Config{
//	    DataDir:        t.TempDir(),
//	    ResourcesDir:   t.TempDir(),
//	    DisableJournal: true,
//	})
//	defer sh.Close()
//
// # Thread Safety
//
// A [Shell] is safe for concurrent use from multiple goroutines. The backend is
// started at most once and terminated at most once per shell.
package lib
