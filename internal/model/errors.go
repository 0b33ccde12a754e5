package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")

	// ErrExecutableNotFound is returned when the backend executable is missing on disk.
	ErrExecutableNotFound = errors.New("executable not found")
	// ErrDirectoryUnreadable is returned when a workspace directory can't be listed.
	ErrDirectoryUnreadable = errors.New("directory unreadable")
	// ErrCopyFailed is returned when a file can't be copied into the workspace.
	ErrCopyFailed = errors.New("copy failed")
	// ErrFileNotFound is returned when a workspace file doesn't exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrReadFailed is returned when a workspace file exists but can't be read.
	ErrReadFailed = errors.New("read failed")
)
