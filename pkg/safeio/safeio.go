// Package safeio is the durability layer every plan mutation goes
// through: write-to-temp-then-rename so a crash never leaves a
// half-written file, and best-effort pre-mutation backups of tracked
// files. Disk-full is the one backup failure that aborts a run.
package safeio

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/arthur-debert/syncpack/pkg/errors"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/google/uuid"
)

// AtomicWrite writes content to path via a temporary file in the same
// directory followed by a rename, so the real path only ever holds
// either the old content or the complete new content. The temp file is
// removed on any failure.
func AtomicWrite(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return classify(err, errors.ErrDirCreate, "cannot create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return classify(err, errors.ErrFileWrite, "cannot create temp file in %s", dir)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return classify(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return classify(err, errors.ErrFileWrite, "cannot close temp file for %s", path)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return classify(err, errors.ErrFileWrite, "cannot set mode on %s", path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return classify(err, errors.ErrFileWrite, "cannot rename temp file to %s", path)
	}
	return nil
}

// BackupResult reports what a pre-mutation backup pass did.
type BackupResult struct {
	// Dir is the timestamped backup directory, empty when nothing
	// needed backing up.
	Dir string

	// Copied counts files snapshotted; Failed counts per-file errors
	// that were logged and skipped.
	Copied int
	Failed int
}

// BackupFiles copies every currently-existing tracked file (paths
// relative to root) into a fresh timestamped directory under
// backupRoot, mirroring the relative layout. Individual failures are
// logged and skipped: a partial backup still beats none. Disk-full
// aborts immediately.
func BackupFiles(root string, relPaths []string, backupRoot string) (BackupResult, error) {
	logger := logging.GetLogger("safeio")
	var result BackupResult

	var existing []string
	for _, rel := range relPaths {
		if _, err := os.Stat(filepath.Join(root, rel)); err == nil {
			existing = append(existing, rel)
		}
	}
	if len(existing) == 0 {
		return result, nil
	}

	stamp := time.Now().Format("20060102-150405")
	result.Dir = filepath.Join(backupRoot, fmt.Sprintf("%s-%s", stamp, uuid.NewString()[:8]))

	for _, rel := range existing {
		src := filepath.Join(root, rel)
		dst := filepath.Join(result.Dir, rel)
		if err := copyFile(src, dst); err != nil {
			if isDiskFull(err) {
				return result, errors.Wrapf(err, errors.ErrDiskFull, "disk full while backing up %s", rel)
			}
			logger.Warn().Err(err).Str("file", rel).Msg("Backup failed for file, continuing")
			result.Failed++
			continue
		}
		result.Copied++
	}

	logger.Info().
		Str("dir", result.Dir).
		Int("copied", result.Copied).
		Int("failed", result.Failed).
		Msg("Backup complete")
	return result, nil
}

// PruneBackups removes all but the newest keep backup directories under
// backupRoot. Best-effort; returns the first removal error, if any.
func PruneBackups(backupRoot string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	dirEntries, err := os.ReadDir(backupRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var names []string
	for _, entry := range dirEntries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	if len(names) <= keep {
		return nil
	}
	// Timestamp prefix makes lexical order chronological.
	sort.Strings(names)

	var firstErr error
	for _, name := range names[:len(names)-keep] {
		if err := os.RemoveAll(filepath.Join(backupRoot, name)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// classify wraps an I/O error, promoting ENOSPC to the fatal disk-full
// code regardless of the caller's suggestion.
func classify(err error, code errors.ErrorCode, format string, args ...interface{}) error {
	if isDiskFull(err) {
		code = errors.ErrDiskFull
	} else if os.IsPermission(err) {
		code = errors.ErrPermission
	}
	return errors.Wrapf(err, code, format, args...)
}

func isDiskFull(err error) bool {
	return stderrors.Is(err, syscall.ENOSPC)
}
