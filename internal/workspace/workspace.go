// Package workspace owns the sandboxed workspace directory where the user data lives.
//
// Every operation is confined to the workspace root using os.Root, so relative paths with
// `..` components or symlinks pointing outside can't be used to read or write other files.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/slok/deskshell/internal/conventions"
	"github.com/slok/deskshell/internal/log"
	"github.com/slok/deskshell/internal/model"
	"github.com/slok/deskshell/internal/utils/file"
)

const markerContent = conventions.DefaultDatasetFile + " has been copied to this directory."

// maxRenameAttempts bounds the `name (N).ext` search of the rename collision policy.
const maxRenameAttempts = 10000

// StoreConfig is the configuration for the workspace store.
type StoreConfig struct {
	// DataDir is the user data directory, the workspace lives inside it. Required.
	DataDir string
	// DatasetPath is the bundled default dataset seeded on first run.
	DatasetPath string
	// Collision is the upload name collision policy, defaults to overwrite.
	Collision model.CollisionPolicy
	Logger    log.Logger
}

func (c *StoreConfig) defaults() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}

	if c.Collision == "" {
		c.Collision = model.CollisionOverwrite
	}
	if !c.Collision.Valid() {
		return fmt.Errorf("unknown collision policy %q", c.Collision)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "workspace.Store"})

	return nil
}

// Store is the workspace directory store. It only holds immutable paths, the
// filesystem is the only state, so it's safe for concurrent use.
type Store struct {
	dataDir     string
	root        string
	datasetPath string
	collision   model.CollisionPolicy
	logger      log.Logger
}

// NewStore returns a new workspace store. It doesn't touch the filesystem.
func NewStore(cfg StoreConfig) (*Store, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute data dir: %w", err)
	}

	return &Store{
		dataDir:     dataDir,
		root:        conventions.WorkspacePath(dataDir),
		datasetPath: cfg.DatasetPath,
		collision:   cfg.Collision,
		logger:      cfg.Logger,
	}, nil
}

// Root returns the absolute workspace root path.
func (s *Store) Root() string { return s.root }

// DataDir returns the absolute user data directory path.
func (s *Store) DataDir() string { return s.dataDir }

// EnsureWorkspace creates the workspace root if missing and returns its path.
func (s *Store) EnsureWorkspace(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("could not create workspace %s: %w", s.root, err)
	}

	return s.root, nil
}

// SeedDefaultDatasetOnce copies the bundled dataset into the workspace the first time.
// The marker file in the workspace root makes it run once across restarts.
//
// A missing dataset is not an error, the marker is not written so seeding is retried
// on the next run.
func (s *Store) SeedDefaultDatasetOnce(ctx context.Context) (model.SeedResult, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	root, err := os.OpenRoot(s.root)
	if err != nil {
		return "", fmt.Errorf("could not open workspace: %w: %w", model.ErrCopyFailed, err)
	}
	defer root.Close()

	if _, err := root.Lstat(conventions.MarkerFile); err == nil {
		s.logger.Debugf("Default dataset already seeded")
		return model.SeedSkipped, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("could not check seed marker: %w: %w", model.ErrCopyFailed, err)
	}

	src, err := os.Open(s.datasetPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || s.datasetPath == "" {
			s.logger.Errorf("Default dataset not found at %q, workspace not seeded", s.datasetPath)
			return model.SeedDatasetMissing, nil
		}
		return "", fmt.Errorf("could not open default dataset: %w: %w", model.ErrCopyFailed, err)
	}
	defer src.Close()

	name := filepath.Base(s.datasetPath)
	if err := writeAtomic(ctx, root, name, src); err != nil {
		return "", fmt.Errorf("could not copy default dataset: %w: %w", model.ErrCopyFailed, err)
	}

	if err := root.WriteFile(conventions.MarkerFile, []byte(markerContent), 0o644); err != nil {
		return "", fmt.Errorf("could not write seed marker: %w: %w", model.ErrCopyFailed, err)
	}

	s.logger.Infof("Default dataset %s copied to workspace", name)
	return model.SeedCopied, nil
}

// List returns the entries of a workspace directory, sorted by name and without the seed marker.
// The directory can be absolute (inside the workspace) or relative to the workspace root.
func (s *Store) List(ctx context.Context, dir string) ([]model.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := s.relPath(dir)
	if err != nil {
		return nil, err
	}

	root, err := os.OpenRoot(s.root)
	if err != nil {
		return nil, fmt.Errorf("could not open workspace: %w: %w", model.ErrDirectoryUnreadable, err)
	}
	defer root.Close()

	f, err := root.Open(rel)
	if err != nil {
		return nil, fmt.Errorf("could not open directory %q: %w: %w", dir, model.ErrDirectoryUnreadable, err)
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("could not read directory %q: %w: %w", dir, model.ErrDirectoryUnreadable, err)
	}

	files := make([]model.FileEntry, 0, len(entries))
	for _, e := range entries {
		if rel == "." && e.Name() == conventions.MarkerFile {
			continue
		}
		// Uploads and seeds in flight.
		if isTempName(e.Name()) {
			continue
		}

		// Follow symlinks only if they stay inside the workspace.
		info, err := root.Stat(filepath.Join(rel, e.Name()))
		if err != nil {
			info, err = e.Info()
			if err != nil {
				return nil, fmt.Errorf("could not stat %q: %w: %w", e.Name(), model.ErrDirectoryUnreadable, err)
			}
		}
		files = append(files, model.FileEntry{Name: e.Name(), Size: info.Size()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return files, nil
}

// Upload copies an external file into a workspace directory keeping its base name and
// returns the resulting absolute path. Name collisions follow the configured policy.
func (s *Store) Upload(ctx context.Context, srcPath, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel, err := s.relPath(destDir)
	if err != nil {
		return "", err
	}

	name := filepath.Base(srcPath)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid source file %q: %w", srcPath, model.ErrNotValid)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("could not open source %q: %w: %w", srcPath, model.ErrCopyFailed, err)
	}
	defer src.Close()

	st, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("could not stat source %q: %w: %w", srcPath, model.ErrCopyFailed, err)
	}
	if !st.Mode().IsRegular() {
		return "", fmt.Errorf("source %q is not a regular file: %w", srcPath, model.ErrCopyFailed)
	}

	root, err := os.OpenRoot(s.root)
	if err != nil {
		return "", fmt.Errorf("could not open workspace: %w: %w", model.ErrCopyFailed, err)
	}
	defer root.Close()

	dst, err := s.uploadTarget(root, rel, name)
	if err != nil {
		return "", err
	}

	if err := writeAtomic(ctx, root, dst, src); err != nil {
		return "", fmt.Errorf("could not copy %q: %w: %w", srcPath, model.ErrCopyFailed, err)
	}

	path := filepath.Join(s.root, dst)
	s.logger.Infof("File uploaded to workspace: %s", path)

	return path, nil
}

// uploadTarget returns the workspace relative path where an upload will be stored.
func (s *Store) uploadTarget(root *os.Root, dir, name string) (string, error) {
	dst := filepath.Join(dir, name)
	exists, err := entryExists(root, dst)
	if err != nil {
		return "", fmt.Errorf("could not check destination %q: %w: %w", dst, model.ErrCopyFailed, err)
	}
	if !exists {
		return dst, nil
	}

	switch s.collision {
	case model.CollisionReject:
		return "", fmt.Errorf("file %q already exists in workspace: %w", dst, model.ErrAlreadyExists)
	case model.CollisionRename:
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		for i := 1; i <= maxRenameAttempts; i++ {
			candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, i, ext))
			exists, err := entryExists(root, candidate)
			if err != nil {
				return "", fmt.Errorf("could not check destination %q: %w: %w", candidate, model.ErrCopyFailed, err)
			}
			if !exists {
				s.logger.Infof("File %q already exists, uploading as %q", dst, candidate)
				return candidate, nil
			}
		}
		return "", fmt.Errorf("no free name for %q: %w", dst, model.ErrAlreadyExists)
	default:
		s.logger.Warningf("File %q already exists, overwriting", dst)
		return dst, nil
	}
}

// Exists returns true if the file exists in a workspace directory. It never fails, paths
// outside the workspace don't exist.
func (s *Store) Exists(ctx context.Context, name, destDir string) bool {
	if ctx.Err() != nil {
		return false
	}

	if name == "" {
		return false
	}
	rel, err := s.relPath(filepath.Join(destDir, name))
	if err != nil {
		return false
	}

	root, err := os.OpenRoot(s.root)
	if err != nil {
		return false
	}
	defer root.Close()

	_, err = root.Stat(rel)
	return err == nil
}

// Read returns the text content of a workspace file.
func (s *Store) Read(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel, err := s.relPath(name)
	if err != nil {
		return "", err
	}

	root, err := os.OpenRoot(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("workspace missing: %w", model.ErrFileNotFound)
		}
		return "", fmt.Errorf("could not open workspace: %w: %w", model.ErrReadFailed, err)
	}
	defer root.Close()

	data, err := root.ReadFile(rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("file %q: %w", name, model.ErrFileNotFound)
		}
		return "", fmt.Errorf("could not read %q: %w: %w", name, model.ErrReadFailed, err)
	}

	return string(data), nil
}

// relPath converts a workspace path (absolute inside the root, or relative to it) into
// a local relative path. Paths leaving the workspace are not valid.
func (s *Store) relPath(p string) (string, error) {
	if p == "" {
		return ".", nil
	}

	rel := p
	if filepath.IsAbs(p) {
		r, err := filepath.Rel(s.root, p)
		if err != nil {
			return "", fmt.Errorf("path %q is outside the workspace: %w", p, model.ErrNotValid)
		}
		rel = r
	}

	rel = filepath.Clean(rel)
	if rel == "." {
		return rel, nil
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("path %q is outside the workspace: %w", p, model.ErrNotValid)
	}

	return rel, nil
}

func entryExists(root *os.Root, name string) (bool, error) {
	_, err := root.Lstat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// writeAtomic writes the reader into a temporary file next to the destination and renames
// it in place, readers never observe a partially written file.
func writeAtomic(ctx context.Context, root *os.Root, name string, r io.Reader) (err error) {
	tmp := filepath.Join(filepath.Dir(name), tempName(filepath.Base(name)))
	f, err := root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = root.Remove(tmp)
		}
	}()

	if _, err := file.CopyContext(ctx, f, r); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return root.Rename(tmp, name)
}

const tempSuffix = ".tmp"

// tempName returns the hidden name a file is written to before being renamed: `.<name>.<ulid>.tmp`.
func tempName(name string) string {
	return "." + name + "." + ulid.Make().String() + tempSuffix
}

func isTempName(name string) bool {
	if !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, tempSuffix) {
		return false
	}
	trimmed := strings.TrimSuffix(name[1:], tempSuffix)
	i := strings.LastIndex(trimmed, ".")
	if i <= 0 {
		return false
	}
	_, err := ulid.ParseStrict(trimmed[i+1:])
	return err == nil
}
