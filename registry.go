// registry.go: process-wide integration cache with coalesced resolution
//
// This file implements the integration registry: the single owner of
// every resolved Integration in the process. It coalesces concurrent
// requests for the same domain onto one underlying resolution, checks
// the operator-extensible custom root before the bundled built-in
// root, and bounds filesystem-touching work with a weighted semaphore.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

const (
	// maxLoadConcurrently bounds parallel filesystem resolutions so a
	// large batch does not fan out into a file-descriptor storm.
	maxLoadConcurrently = 4

	// customRootDirName is the default custom root below the config dir.
	customRootDirName = "custom_integrations"
)

// Options configures a Registry.
type Options struct {
	// ConfigDir is the host configuration directory. Required: without
	// it no integration loading is possible at all.
	ConfigDir string

	// BuiltinRoot is the bundled, trusted integrations root.
	BuiltinRoot string

	// CustomRoot overrides the operator-extensible root. Defaults to
	// <ConfigDir>/custom_integrations.
	CustomRoot string

	// SafeMode disables custom integration discovery entirely; only
	// the built-in root is consulted.
	SafeMode bool

	// MaxConcurrentLoads bounds parallel built-in root resolutions.
	// Defaults to maxLoadConcurrently.
	MaxConcurrentLoads int64

	// Builtin supplies the static discovery matcher tables merged into
	// every aggregate lookup. Defaults to empty tables.
	Builtin *BuiltinMatchers

	Logger Logger
}

// Result is the per-domain outcome of a batch lookup: exactly one of
// Integration or Err is set.
type Result struct {
	Integration *Integration
	Err         error
}

// Registry owns the process-wide integration cache.
//
// Entry lifecycle per domain: absent -> pending -> resolved, one way.
// A failed resolution removes the pending marker instead of caching
// the failure, so an operator can fix their setup and retry without a
// restart. All waiters queued on a pending marker observe the same
// final outcome.
type Registry struct {
	opts       Options
	customRoot string
	logger     Logger
	fsys       manifestFS
	builtin    *BuiltinMatchers

	mu      sync.Mutex
	cache   map[string]*Integration
	pending map[string]chan struct{}

	// Custom root enumeration: scanned at most once, concurrent
	// callers coalesce onto the in-flight scan.
	customGroup singleflight.Group
	customMu    sync.Mutex
	custom      map[string]*Integration

	// Bounded executor for built-in root filesystem work.
	loadSem *semaphore.Weighted

	// Discovery aggregate tables, each built at most once.
	aggGroup   singleflight.Group
	aggMu      sync.Mutex
	aggNetwork map[string][]NetworkMatcher
	aggRadio   []RadioMatcher
	aggUSB     []USBMatcher
	aggDHCP    []DHCPMatcher
	aggPairing map[string]string
	aggService map[string][]ServiceMatcher
	aggBus     map[string][]string

	stats registryStats
}

type registryStats struct {
	cacheHits      atomic.Int64
	loaded         atomic.Int64
	loadFailures   atomic.Int64
	coalescedWaits atomic.Int64
	customScans    atomic.Int64
}

// RegistryStats is a point-in-time snapshot of registry counters.
type RegistryStats struct {
	CacheHits      int64 `json:"cache_hits"`
	Loaded         int64 `json:"loaded"`
	LoadFailures   int64 `json:"load_failures"`
	CoalescedWaits int64 `json:"coalesced_waits"`
	CustomScans    int64 `json:"custom_scans"`
}

// NewRegistry creates an integration registry.
func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = DefaultLogger()
	}
	if opts.MaxConcurrentLoads <= 0 {
		opts.MaxConcurrentLoads = maxLoadConcurrently
	}
	if opts.Builtin == nil {
		opts.Builtin = DefaultBuiltinMatchers()
	}

	customRoot := opts.CustomRoot
	if customRoot == "" && opts.ConfigDir != "" {
		customRoot = filepath.Join(opts.ConfigDir, customRootDirName)
	}

	return &Registry{
		opts:       opts,
		customRoot: customRoot,
		logger:     opts.Logger,
		fsys:       osFS{},
		builtin:    opts.Builtin,
		cache:      make(map[string]*Integration),
		pending:    make(map[string]chan struct{}),
		loadSem:    semaphore.NewWeighted(opts.MaxConcurrentLoads),
	}
}

// GetIntegration resolves a single domain.
func (r *Registry) GetIntegration(ctx context.Context, domain string) (*Integration, error) {
	result := r.Get(ctx, domain)[domain]
	if result.Err != nil {
		return nil, result.Err
	}
	return result.Integration, nil
}

// Get resolves a batch of domains and returns a per-domain outcome.
//
// Cached domains are returned without any I/O. Domains with an
// in-flight resolution wait for it and share its outcome. The rest are
// marked pending before any I/O, looked up on the custom root first,
// then resolved from the built-in root through the bounded pool.
// Per-item failures never cancel sibling items.
func (r *Registry) Get(ctx context.Context, domains ...string) map[string]Result {
	results := make(map[string]Result, len(domains))

	if r.opts.ConfigDir == "" {
		r.logger.Error("Can't load integrations - configuration directory is not set")
		for _, domain := range domains {
			results[domain] = Result{Err: NewIntegrationNotFoundError(domain)}
		}
		return results
	}

	needed := make(map[string]chan struct{})
	inProgress := make(map[string]chan struct{})

	r.mu.Lock()
	for _, domain := range domains {
		if _, done := results[domain]; done {
			continue
		}
		if _, claimed := needed[domain]; claimed {
			continue
		}
		if _, waiting := inProgress[domain]; waiting {
			continue
		}
		if integ, ok := r.cache[domain]; ok {
			r.stats.cacheHits.Add(1)
			results[domain] = Result{Integration: integ}
			continue
		}
		if ch, ok := r.pending[domain]; ok {
			inProgress[domain] = ch
			continue
		}
		if strings.Contains(domain, ".") {
			results[domain] = Result{Err: NewInvalidDomainError(domain)}
			continue
		}
		// Claim the pending marker before any I/O so concurrent
		// requesters coalesce onto this resolution.
		ch := make(chan struct{})
		r.pending[domain] = ch
		needed[domain] = ch
	}
	r.mu.Unlock()

	for domain, ch := range inProgress {
		r.stats.coalescedWaits.Add(1)
		select {
		case <-ch:
		case <-ctx.Done():
			results[domain] = Result{Err: ctx.Err()}
			continue
		}
		r.mu.Lock()
		integ, ok := r.cache[domain]
		r.mu.Unlock()
		if !ok {
			// The resolution we waited on failed. The failure is not
			// cached, so a fixed setup can be retried later.
			results[domain] = Result{Err: NewIntegrationNotFoundError(domain)}
			continue
		}
		results[domain] = Result{Integration: integ}
	}

	if len(needed) == 0 {
		return results
	}

	// Custom root first.
	custom := r.customIntegrations(ctx)
	for domain, ch := range needed {
		integ, ok := custom[domain]
		if !ok {
			continue
		}
		r.commitResolution(domain, integ, ch)
		results[domain] = Result{Integration: integ}
		delete(needed, domain)
	}

	if len(needed) == 0 {
		return results
	}

	// The rest resolve from the built-in root, bounded by the pool.
	var wg sync.WaitGroup
	var resultsMu sync.Mutex
	for domain, ch := range needed {
		wg.Add(1)
		go func(domain string, ch chan struct{}) {
			defer wg.Done()
			integ := r.resolveBuiltin(ctx, domain)
			r.commitResolution(domain, integ, ch)

			resultsMu.Lock()
			defer resultsMu.Unlock()
			if integ == nil {
				results[domain] = Result{Err: NewIntegrationNotFoundError(domain)}
				return
			}
			results[domain] = Result{Integration: integ}
		}(domain, ch)
	}
	wg.Wait()

	return results
}

// commitResolution finalizes a pending domain: on success the
// Integration is cached, on failure the marker simply disappears.
// Either way every queued waiter is released.
func (r *Registry) commitResolution(domain string, integ *Integration, ch chan struct{}) {
	r.mu.Lock()
	if integ != nil {
		r.cache[domain] = integ
		r.stats.loaded.Add(1)
	} else {
		r.stats.loadFailures.Add(1)
	}
	delete(r.pending, domain)
	r.mu.Unlock()
	close(ch)
}

// resolveBuiltin probes the built-in root for a domain through the
// bounded pool. Failures are logged here and surface as not-found.
func (r *Registry) resolveBuiltin(ctx context.Context, domain string) *Integration {
	if err := r.loadSem.Acquire(ctx, 1); err != nil {
		r.logger.Warn("Integration resolution abandoned",
			"domain", domain,
			"error", err)
		return nil
	}
	defer r.loadSem.Release(1)

	integ, err := r.resolveFromRoot(domain, r.opts.BuiltinRoot, true)
	if err != nil {
		// Cause already logged with context; callers see not-found.
		return nil
	}
	return integ
}

// customIntegrations returns the cached custom root enumeration,
// scanning it on first use. Concurrent first callers coalesce onto a
// single in-flight scan and all observe the same result.
func (r *Registry) customIntegrations(ctx context.Context) map[string]*Integration {
	_ = ctx // The scan is not cancellable; it runs at most once.

	r.customMu.Lock()
	if r.custom != nil {
		custom := r.custom
		r.customMu.Unlock()
		return custom
	}
	r.customMu.Unlock()

	scanned, _, _ := r.customGroup.Do("scan", func() (any, error) {
		return r.scanCustomRootOnce(), nil
	})
	return scanned.(map[string]*Integration)
}

// scanCustomRootOnce is the single-flight body of the custom root
// enumeration. The cache is re-checked first: a caller that read an
// empty cache but joined the group after a completed flight must reuse
// that flight's result, never scan a second time.
func (r *Registry) scanCustomRootOnce() map[string]*Integration {
	r.customMu.Lock()
	if r.custom != nil {
		custom := r.custom
		r.customMu.Unlock()
		return custom
	}
	r.customMu.Unlock()

	custom := r.scanCustomRoot()
	r.customMu.Lock()
	r.custom = custom
	r.customMu.Unlock()
	return custom
}

// CustomIntegrations returns every integration found on the custom
// root, keyed by domain. The enumeration is cached for the process
// lifetime; safe mode yields an empty map.
func (r *Registry) CustomIntegrations(ctx context.Context) map[string]*Integration {
	custom := r.customIntegrations(ctx)
	out := make(map[string]*Integration, len(custom))
	for domain, integ := range custom {
		out[domain] = integ
	}
	return out
}

// Cached returns the cached Integration for a domain, without
// triggering resolution.
func (r *Registry) Cached(domain string) (*Integration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	integ, ok := r.cache[domain]
	return integ, ok
}

// Stats returns a snapshot of the registry counters.
func (r *Registry) Stats() RegistryStats {
	return RegistryStats{
		CacheHits:      r.stats.cacheHits.Load(),
		Loaded:         r.stats.loaded.Load(),
		LoadFailures:   r.stats.loadFailures.Load(),
		CoalescedWaits: r.stats.coalescedWaits.Load(),
		CustomScans:    r.stats.customScans.Load(),
	}
}
