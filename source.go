// source.go: manifest probing across the custom and built-in roots
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	"os"
	"path/filepath"

	"github.com/agilira/go-timecache"
)

const manifestFileName = "manifest.json"

// manifestFS abstracts the filesystem operations used by the source
// resolver so tests can observe (or forbid) probing.
type manifestFS interface {
	ReadFile(path string) ([]byte, error)
	ReadDir(path string) ([]os.DirEntry, error)
}

type osFS struct{}

func (osFS) ReadFile(path string) ([]byte, error)       { return os.ReadFile(path) }
func (osFS) ReadDir(path string) ([]os.DirEntry, error) { return os.ReadDir(path) }

// resolveFromRoot probes <root>/<domain>/manifest.json and constructs
// an Integration from it.
//
// Returns (nil, nil) when no manifest exists under the root. Parse
// failures and version gate violations are logged here and reported
// as errors; callers convert them to not-found outcomes, they never
// abort a batch. Blocking filesystem work: run it off any
// latency-sensitive path.
func (r *Registry) resolveFromRoot(domain, root string, builtIn bool) (*Integration, error) {
	if root == "" {
		return nil, nil
	}

	manifestPath := filepath.Join(root, domain, manifestFileName)
	data, err := r.fsys.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		r.logger.Error("Error reading manifest file",
			"path", manifestPath,
			"error", err)
		return nil, NewManifestParseError(manifestPath, err)
	}

	manifest, err := parseManifest(data)
	if err != nil {
		r.logger.Error("Error parsing manifest.json file",
			"path", manifestPath,
			"error", err)
		return nil, NewManifestParseError(manifestPath, err)
	}

	if !builtIn {
		r.logger.Warn("Found a custom integration which has not been tested; "+
			"disable it if you experience stability problems",
			"domain", manifest.Domain)
		if err := checkVersionGate(manifest, builtIn); err != nil {
			r.logger.Error("Custom integration blocked from loading",
				"domain", manifest.Domain,
				"version", manifest.Version,
				"error", err)
			return nil, err
		}
	}

	return newIntegration(r, manifest, filepath.Dir(manifestPath), builtIn), nil
}

// scanCustomRoot enumerates every subdirectory of the custom root and
// resolves the integrations found there.
//
// Per-item failures are isolated: a broken manifest is logged and
// skipped, never aborting the scan. Safe mode and a missing custom
// root both yield an empty result.
func (r *Registry) scanCustomRoot() map[string]*Integration {
	integrations := make(map[string]*Integration)

	if r.opts.SafeMode || r.customRoot == "" {
		return integrations
	}

	entries, err := r.fsys.ReadDir(r.customRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Error("Error enumerating custom integrations root",
				"path", r.customRoot,
				"error", err)
		}
		return integrations
	}

	r.stats.customScans.Add(1)
	scanStart := timecache.CachedTime()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		integ, err := r.resolveFromRoot(entry.Name(), r.customRoot, false)
		if err != nil || integ == nil {
			// Already logged with full context at the point of failure.
			continue
		}
		integrations[integ.Domain()] = integ
	}

	r.logger.Info("Custom integrations scan completed",
		"root", r.customRoot,
		"found", len(integrations),
		"duration", timecache.CachedTime().Sub(scanStart))
	return integrations
}
