// integration.go: the resolved integration record and its dependency closure
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	"context"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// Integration wraps a parsed manifest together with its filesystem
// location and owning root.
//
// An Integration is created at most once per domain per process, on
// first successful resolution, and is cached for the process lifetime.
// It is immutable after creation except for the lazily computed
// dependency closure, which transitions exactly once from unresolved
// to a terminal resolved-or-failed state.
type Integration struct {
	manifest *Manifest
	path     string
	builtIn  bool
	registry *Registry
	logger   Logger
	loadedAt time.Time

	depMu       sync.Mutex
	depResolved *bool
	allDeps     map[string]struct{}
}

func newIntegration(registry *Registry, manifest *Manifest, path string, builtIn bool) *Integration {
	integ := &Integration{
		manifest: manifest,
		path:     path,
		builtIn:  builtIn,
		registry: registry,
		logger:   registry.logger,
		loadedAt: timecache.CachedTime(),
	}

	// Integrations without hard dependencies are born resolved.
	if len(manifest.Dependencies) == 0 {
		resolved := true
		integ.depResolved = &resolved
		integ.allDeps = map[string]struct{}{}
	}

	integ.logger.Info("Loaded integration",
		"domain", manifest.Domain,
		"path", path,
		"built_in", builtIn)
	return integ
}

// Domain returns the unique identifier of the integration.
func (i *Integration) Domain() string { return i.manifest.Domain }

// Name returns the display name.
func (i *Integration) Name() string { return i.manifest.Name }

// Path returns the directory the manifest was loaded from.
func (i *Integration) Path() string { return i.path }

// IsBuiltIn reports whether the integration came from the built-in
// root. Derived from the source root, never from the manifest itself.
func (i *Integration) IsBuiltIn() bool { return i.builtIn }

// Disabled returns the reason the integration is disabled, or "".
func (i *Integration) Disabled() string { return i.manifest.Disabled }

// Dependencies returns the ordered hard dependency domains.
func (i *Integration) Dependencies() []string { return i.manifest.Dependencies }

// AfterDependencies returns the soft ordering hints.
func (i *Integration) AfterDependencies() []string { return i.manifest.AfterDependencies }

// Requirements returns the opaque requirement specs.
func (i *Integration) Requirements() []string { return i.manifest.Requirements }

// ConfigFlow reports whether the integration supports configuration
// flow setup.
func (i *Integration) ConfigFlow() bool { return i.manifest.ConfigFlow }

// IntegrationType returns the manifest classification tag.
func (i *Integration) IntegrationType() IntegrationType { return i.manifest.IntegrationType }

// Version returns the manifest version string, or "".
func (i *Integration) Version() string { return i.manifest.Version }

// Manifest returns the underlying manifest. Treat it as read-only.
func (i *Integration) Manifest() *Manifest { return i.manifest }

// LoadedAt returns when the integration was first resolved.
func (i *Integration) LoadedAt() time.Time { return i.loadedAt }

// DependenciesResolved reports whether dependency resolution has run,
// regardless of outcome.
func (i *Integration) DependenciesResolved() bool {
	i.depMu.Lock()
	defer i.depMu.Unlock()
	return i.depResolved != nil
}

// AllDependencies returns the full transitive dependency closure,
// excluding the integration's own domain. It errors until
// ResolveDependencies has completed successfully.
func (i *Integration) AllDependencies() (map[string]struct{}, error) {
	i.depMu.Lock()
	defer i.depMu.Unlock()
	if i.depResolved == nil || !*i.depResolved {
		return nil, NewDependenciesUnresolvedError(i.manifest.Domain)
	}
	deps := make(map[string]struct{}, len(i.allDeps))
	for domain := range i.allDeps {
		deps[domain] = struct{}{}
	}
	return deps, nil
}

// ResolveDependencies computes the transitive dependency closure of
// the integration, loading any dependencies not yet in the registry.
//
// The result is memoized: the first completed call decides the
// permanent outcome and later calls return the cached boolean without
// recomputation. A failed resolution stays failed; fixing it requires
// operator intervention and a restart, not a retry.
//
// Concurrent first calls may compute redundantly; resolution is
// deterministic, so they all commit the same outcome. Only the first
// commit wins.
func (i *Integration) ResolveDependencies(ctx context.Context) bool {
	i.depMu.Lock()
	if i.depResolved != nil {
		resolved := *i.depResolved
		i.depMu.Unlock()
		return resolved
	}
	i.depMu.Unlock()

	deps, err := i.registry.dependencyClosure(ctx, i)
	success := err == nil
	if err != nil {
		if from, to, ok := CycleEdge(err); ok {
			i.logger.Error("Unable to resolve dependencies: circular dependency",
				"domain", i.manifest.Domain,
				"from", from,
				"to", to)
		} else {
			i.logger.Error("Unable to resolve dependencies",
				"domain", i.manifest.Domain,
				"error", err)
		}
	}

	i.depMu.Lock()
	defer i.depMu.Unlock()
	if i.depResolved == nil {
		if success {
			delete(deps, i.manifest.Domain)
			i.allDeps = deps
		}
		i.depResolved = &success
	}
	return *i.depResolved
}

// Component returns the component handle backing this integration.
func (i *Integration) Component(host *Host) (any, error) {
	return host.Components.Get(i.manifest.Domain)
}

// Platform returns a named sub-platform handle of this integration.
func (i *Integration) Platform(host *Host, platform string) (any, error) {
	return host.Components.GetPlatform(i.manifest.Domain, platform)
}
