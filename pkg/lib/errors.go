package lib

import (
	"errors"

	"github.com/slok/deskshell/internal/model"
)

var (
	// ErrNotFound is returned when a resource does not exist (e.g. a journal run or the file picker).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when an upload collides with an existing file and the policy rejects it.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid input, including paths escaping the workspace.
	ErrNotValid = errors.New("not valid")
	// ErrExecutableNotFound is returned when the backend executable is missing.
	ErrExecutableNotFound = errors.New("executable not found")
	// ErrDirectoryUnreadable is returned when a workspace directory can't be listed.
	ErrDirectoryUnreadable = errors.New("directory unreadable")
	// ErrCopyFailed is returned when a file can't be copied into the workspace.
	ErrCopyFailed = errors.New("copy failed")
	// ErrFileNotFound is returned when a workspace file does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrReadFailed is returned when a workspace file exists but can't be read.
	ErrReadFailed = errors.New("read failed")
)

var errorMappings = []struct {
	internal error
	public   error
}{
	{model.ErrFileNotFound, ErrFileNotFound},
	{model.ErrReadFailed, ErrReadFailed},
	{model.ErrCopyFailed, ErrCopyFailed},
	{model.ErrDirectoryUnreadable, ErrDirectoryUnreadable},
	{model.ErrExecutableNotFound, ErrExecutableNotFound},
	{model.ErrNotFound, ErrNotFound},
	{model.ErrAlreadyExists, ErrAlreadyExists},
	{model.ErrNotValid, ErrNotValid},
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.internal) {
			return &mappedError{original: err, sentinel: m.public}
		}
	}

	return err
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
