// Package lockfile provides a named, cross-process advisory lock scoped
// to an installation root. The lock is a marker file created with
// exclusive-create semantics; this is inherently racy on some network
// filesystems, which is a documented limitation. The Locker interface
// exists so an OS-level advisory lock could replace the file marker
// without touching callers.
package lockfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arthur-debert/syncpack/pkg/errors"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/google/uuid"
)

const (
	// DefaultTimeout bounds waiting for other processes.
	DefaultTimeout = 30 * time.Second

	// MinTimeout and MaxTimeout clamp caller-supplied timeouts.
	MinTimeout = 5 * time.Second
	MaxTimeout = 300 * time.Second

	retryInterval = 100 * time.Millisecond

	// staleAfter is the age past which a marker may be reclaimed, but
	// only once the holder is confirmed dead: a live holder is
	// authoritative over any age.
	staleAfter = 5 * time.Minute
)

// Locker acquires the installation-root mutex.
type Locker interface {
	Acquire(timeout time.Duration) (*Lock, error)
}

// Lock is a held lock. Release is idempotent and best-effort.
type Lock struct {
	path     string
	nonce    string
	released bool
}

// holderInfo is the JSON body of a lock marker.
type holderInfo struct {
	PID        int       `json:"pid"`
	Nonce      string    `json:"nonce"`
	Hostname   string    `json:"hostname"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

// FileLocker implements Locker with an exclusive-create marker file.
type FileLocker struct {
	// Path is the marker file location, conventionally inside the
	// installation root's cache directory.
	Path string

	// now is swappable for staleness tests.
	now func() time.Time
}

// New returns a FileLocker for the given marker path.
func New(path string) *FileLocker {
	return &FileLocker{Path: path, now: time.Now}
}

// ClampTimeout applies the [MinTimeout, MaxTimeout] bounds, mapping
// zero to DefaultTimeout.
func ClampTimeout(timeout time.Duration) time.Duration {
	if timeout == 0 {
		return DefaultTimeout
	}
	if timeout < MinTimeout {
		return MinTimeout
	}
	if timeout > MaxTimeout {
		return MaxTimeout
	}
	return timeout
}

// Acquire creates the marker with O_EXCL, retrying with a short fixed
// backoff until timeout. A marker older than the staleness threshold is
// reclaimed only after the recorded holder is confirmed dead or cannot
// be identified.
func (f *FileLocker) Acquire(timeout time.Duration) (*Lock, error) {
	logger := logging.GetLogger("lockfile")
	timeout = ClampTimeout(timeout)
	deadline := f.now().Add(timeout)

	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create lock directory for %s", f.Path)
	}

	nonce := uuid.NewString()
	for {
		lock, err := f.tryCreate(nonce)
		if err == nil {
			logger.Debug().Str("path", f.Path).Msg("Lock acquired")
			return lock, nil
		}
		if !os.IsExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot create lock marker %s", f.Path)
		}

		if holder, ok := f.readHolder(); ok && f.isStale(holder) {
			logger.Warn().
				Int("holderPid", holder.PID).
				Time("acquiredAt", holder.AcquiredAt).
				Msg("Reclaiming stale lock from dead holder")
			if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, errors.ErrLockHeld, "cannot reclaim stale lock %s", f.Path)
			}
			continue
		}

		if f.now().After(deadline) {
			holder, _ := f.readHolder()
			return nil, errors.Newf(errors.ErrLockTimeout,
				"another syncpack process (pid %d) holds the lock at %s; timed out after %s",
				holder.PID, f.Path, timeout)
		}
		time.Sleep(retryInterval)
	}
}

func (f *FileLocker) tryCreate(nonce string) (*Lock, error) {
	file, err := os.OpenFile(f.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	hostname, _ := os.Hostname()
	info := holderInfo{
		PID:        os.Getpid(),
		Nonce:      nonce,
		Hostname:   hostname,
		AcquiredAt: f.now(),
	}
	encodeErr := json.NewEncoder(file).Encode(info)
	closeErr := file.Close()
	if encodeErr != nil || closeErr != nil {
		_ = os.Remove(f.Path)
		if encodeErr != nil {
			return nil, encodeErr
		}
		return nil, closeErr
	}
	return &Lock{path: f.Path, nonce: nonce}, nil
}

// readHolder parses the current marker. A missing or unparsable marker
// yields ok=false; unparsable markers are treated as unidentifiable
// holders and fall to the staleness path via zero holderInfo.
func (f *FileLocker) readHolder() (holderInfo, bool) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return holderInfo{}, false
	}
	var info holderInfo
	if err := json.Unmarshal(data, &info); err != nil {
		// Corrupt marker: reclaimable once old enough. Use the file
		// mtime as its age.
		if stat, statErr := os.Stat(f.Path); statErr == nil {
			return holderInfo{PID: -1, AcquiredAt: stat.ModTime()}, true
		}
		return holderInfo{}, false
	}
	return info, true
}

// isStale reports whether a marker may be reclaimed: older than the
// threshold AND its holder confirmed dead or unidentifiable. A live
// holder is never stale, no matter the age.
func (f *FileLocker) isStale(holder holderInfo) bool {
	if f.now().Sub(holder.AcquiredAt) < staleAfter {
		return false
	}
	return !processAlive(holder.PID)
}

// processAlive probes a pid with signal 0. Permission errors mean the
// process exists and is someone else's: treated as alive.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return err == syscall.EPERM
}

// Release removes the marker if this lock still owns it. Idempotent and
// best-effort: failure to delete is logged, not fatal, since a later
// acquisition will reclaim the marker by the staleness path.
func (l *Lock) Release() {
	if l == nil || l.released {
		return
	}
	l.released = true

	logger := logging.GetLogger("lockfile")
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", l.path).Msg("Cannot read lock marker during release")
		}
		return
	}
	var info holderInfo
	if err := json.Unmarshal(data, &info); err == nil && info.Nonce != l.nonce {
		// Someone reclaimed and re-acquired; not ours to delete.
		logger.Warn().Str("path", l.path).Msg("Lock marker no longer ours, leaving it")
		return
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", l.path).Msg("Failed to remove lock marker")
	}
}
