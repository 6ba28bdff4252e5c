package types

// SyncFileStatus classifies one previously-tracked file for the sync
// (text-merge) command path.
type SyncFileStatus string

const (
	// SyncAutoUpdate means the file is unmodified locally and safe to
	// overwrite with upstream content
	SyncAutoUpdate SyncFileStatus = "auto-update"

	// SyncNeedsReview means the user edited the file and upstream also
	// changed; requires an interactive merge
	SyncNeedsReview SyncFileStatus = "needs-review"

	// SyncSkipped means the file is user-owned and left untouched
	SyncSkipped SyncFileStatus = "skipped"
)

// SyncFile is one tracked file in a sync plan.
type SyncFile struct {
	// Path is relative to the install root
	Path string

	Status SyncFileStatus

	// Reason explains the classification
	Reason string
}

// SyncPlan partitions previously-tracked files for the update/sync
// command: a narrower, file-path-oriented twin of Plan that shares the
// same checksum-comparison logic.
type SyncPlan struct {
	AutoUpdate  []SyncFile
	NeedsReview []SyncFile
	Skipped     []SyncFile
}

// Total returns the number of files in the plan.
func (p SyncPlan) Total() int {
	return len(p.AutoUpdate) + len(p.NeedsReview) + len(p.Skipped)
}
