package model

// FileEntry is a workspace directory listing record.
type FileEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// SeedResult is the outcome of seeding the workspace with the default dataset.
type SeedResult string

const (
	// SeedCopied indicates the dataset was copied and the marker written.
	SeedCopied SeedResult = "copied"
	// SeedSkipped indicates the marker was already present.
	SeedSkipped SeedResult = "skipped"
	// SeedDatasetMissing indicates the bundled dataset doesn't exist, seeding will be retried on a later run.
	SeedDatasetMissing SeedResult = "dataset_missing"
)

// CollisionPolicy decides what happens when an uploaded file name already exists.
type CollisionPolicy string

const (
	// CollisionOverwrite replaces the existing file.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionReject fails the upload with ErrAlreadyExists.
	CollisionReject CollisionPolicy = "reject"
	// CollisionRename stores the upload as `name (N).ext`.
	CollisionRename CollisionPolicy = "rename"
)

// Valid returns true when the policy is a known one.
func (c CollisionPolicy) Valid() bool {
	switch c {
	case CollisionOverwrite, CollisionReject, CollisionRename:
		return true
	}
	return false
}
