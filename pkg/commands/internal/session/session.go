// Package session assembles the pieces every command needs: resolved
// paths, merged configuration, the loaded registry, the loaded bundle,
// and (for mutating commands) the cross-process lock. Commands open a
// session, run their pipeline, and close it.
package session

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/syncpack/pkg/bundle"
	"github.com/arthur-debert/syncpack/pkg/config"
	"github.com/arthur-debert/syncpack/pkg/errors"
	"github.com/arthur-debert/syncpack/pkg/lockfile"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/arthur-debert/syncpack/pkg/paths"
	"github.com/arthur-debert/syncpack/pkg/registry"
	"github.com/arthur-debert/syncpack/pkg/style"
	"github.com/arthur-debert/syncpack/pkg/types"
)

// defaultProviders is used when neither the config file nor the
// command line names any.
var defaultProviders = []string{"claude"}

// Options selects what the session loads.
type Options struct {
	// InstallRoot overrides the install root; empty falls back to
	// SYNCPACK_ROOT and then the working directory.
	InstallRoot string

	// BundleDir is the extracted bundle to load; empty skips bundle
	// loading (status does not need one when showing registry state).
	BundleDir string

	// Providers overrides the configured provider list.
	Providers []string

	// Scope overrides the configured default scope.
	Scope string

	// Lock acquires the mutation lock. Read-only commands leave it
	// false and never block other processes.
	Lock bool
}

// Session is one command invocation's loaded state.
type Session struct {
	Paths    paths.Paths
	Config   *config.Config
	Store    *registry.Store
	Registry *registry.Document
	Bundle   *bundle.Bundle
	Targets  []types.DeliveryTarget

	lock *lockfile.Lock
}

// Open resolves paths, loads config and registry, optionally loads the
// bundle and takes the lock. On error nothing is left held.
func Open(opts Options) (*Session, error) {
	logger := logging.GetLogger("session")

	p, err := paths.New(opts.InstallRoot)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(p.InstallRoot())
	if err != nil {
		return nil, err
	}

	style.SetColorMode(cfg.Color)

	s := &Session{Paths: p, Config: cfg}
	s.Targets, err = deliveryTargets(opts.Providers, opts.Scope, cfg)
	if err != nil {
		return nil, err
	}

	if opts.Lock {
		if err := os.MkdirAll(filepath.Dir(p.LockPath()), 0755); err != nil {
			return nil, err
		}
		locker := lockfile.New(p.LockPath())
		lock, err := locker.Acquire(lockfile.ClampTimeout(cfg.LockTimeout))
		if err != nil {
			return nil, err
		}
		s.lock = lock
	}

	s.Store = registry.New(p.RegistryPath())
	doc, err := s.Store.Load()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Registry = doc

	if opts.BundleDir != "" {
		b, err := bundle.Load(opts.BundleDir, s.Targets)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Bundle = b
	}

	logger.Debug().
		Str("root", p.InstallRoot()).
		Bool("locked", s.lock != nil).
		Int("targets", len(s.Targets)).
		Msg("Session open")
	return s, nil
}

// Close releases the lock when one is held. Safe to call twice.
func (s *Session) Close() {
	if s.lock != nil {
		s.lock.Release()
		s.lock = nil
	}
}

// SaveRegistry persists the registry document atomically.
func (s *Session) SaveRegistry() error {
	return s.Store.Save(s.Registry)
}

func deliveryTargets(override []string, scopeOverride string, cfg *config.Config) ([]types.DeliveryTarget, error) {
	providers := override
	if len(providers) == 0 {
		providers = cfg.Providers
	}
	if len(providers) == 0 {
		providers = defaultProviders
	}

	scope := types.Scope(cfg.DefaultScope)
	if scopeOverride != "" {
		scope = types.Scope(scopeOverride)
	}
	if !scope.IsValid() {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"invalid scope %q: must be global or local", scope)
	}

	targets := make([]types.DeliveryTarget, 0, len(providers))
	for _, provider := range providers {
		targets = append(targets, types.DeliveryTarget{Provider: provider, Scope: scope})
	}
	return targets, nil
}
