// Package paths provides centralized path handling for syncpack.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/syncpack/pkg/errors"
)

// Environment variable names
const (
	// EnvInstallRoot is the primary environment variable for the
	// installation root
	EnvInstallRoot = "SYNCPACK_ROOT"

	// EnvCacheDir overrides the XDG cache directory for syncpack
	EnvCacheDir = "SYNCPACK_CACHE_DIR"

	// EnvStateDir overrides the XDG state directory for syncpack
	EnvStateDir = "SYNCPACK_STATE_DIR"
)

// Internal layout constants. These define syncpack's on-disk structure
// and are not user-configurable.
const (
	// AppDirName is the directory name for syncpack-specific files
	AppDirName = "syncpack"

	// MetaDirName is the per-root directory holding the registry
	MetaDirName = ".syncpack"

	// RegistryFileName is the registry document file name
	RegistryFileName = "registry.json"

	// LocksDirName is the cache subdirectory for lock markers
	LocksDirName = "locks"

	// BackupsDirName is the state subdirectory for backup trees
	BackupsDirName = "backups"
)

// Paths provides centralized path management for one installation root.
type Paths interface {
	// InstallRoot is the absolute root every tracked file path is
	// relative to.
	InstallRoot() string

	// UsedFallback reports whether the root came from the cwd fallback
	// rather than an explicit argument or environment variable.
	UsedFallback() bool

	// RegistryPath is the per-root registry document.
	RegistryPath() string

	// LockPath is the per-root lock marker in the cache directory.
	LockPath() string

	// BackupRoot is the per-root directory that holds timestamped
	// backup trees.
	BackupRoot() string

	// TargetPath resolves a tracked file's relative path against the
	// root, rejecting anything that would escape it.
	TargetPath(rel string) (string, error)
}

type paths struct {
	root         string
	usedFallback bool
	cacheDir     string
	stateDir     string
}

// New creates a Paths instance. Root resolution order: explicit
// argument, SYNCPACK_ROOT, current working directory.
func New(installRoot string) (Paths, error) {
	p := &paths{}

	root := installRoot
	if root == "" {
		root = os.Getenv(EnvInstallRoot)
	}
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot determine working directory")
		}
		root = cwd
		p.usedFallback = true
	}
	root, err := ExpandHome(root)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid install root %s", root)
	}
	p.root = abs

	if p.cacheDir = os.Getenv(EnvCacheDir); p.cacheDir == "" {
		p.cacheDir = filepath.Join(xdg.CacheHome, AppDirName)
	}
	if p.stateDir = os.Getenv(EnvStateDir); p.stateDir == "" {
		p.stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}
	return p, nil
}

func (p *paths) InstallRoot() string { return p.root }

func (p *paths) UsedFallback() bool { return p.usedFallback }

func (p *paths) RegistryPath() string {
	return filepath.Join(p.root, MetaDirName, RegistryFileName)
}

func (p *paths) LockPath() string {
	return filepath.Join(p.cacheDir, LocksDirName, rootKey(p.root)+".lock")
}

func (p *paths) BackupRoot() string {
	return filepath.Join(p.stateDir, BackupsDirName, rootKey(p.root))
}

func (p *paths) TargetPath(rel string) (string, error) {
	if rel == "" {
		return "", errors.New(errors.ErrInvalidInput, "target path cannot be empty")
	}
	if strings.Contains(rel, "\x00") {
		return "", errors.New(errors.ErrPathUnsafe, "target path contains null bytes")
	}
	if filepath.IsAbs(rel) {
		return "", errors.Newf(errors.ErrPathUnsafe, "target path %s must be relative to the install root", rel)
	}
	joined := filepath.Join(p.root, rel)
	if joined != p.root && !strings.HasPrefix(joined, p.root+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrPathUnsafe, "target path %s escapes the install root", rel)
	}
	return joined, nil
}

// rootKey derives a short stable identifier for an install root, used
// to keep lock markers and backup trees for different roots apart.
func rootKey(root string) string {
	sum := sha256.Sum256([]byte(root))
	return fmt.Sprintf("%x", sum[:6])
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		return "", errors.New(errors.ErrFileAccess,
			"unable to determine home directory: neither os.UserHomeDir() nor HOME are available")
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
