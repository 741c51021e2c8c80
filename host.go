// host.go: host process context owning the registry and facades
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

// Host is the process context integrations load into. It owns the
// Registry and the typed Components/Helpers facades; everything else
// holds non-owning references by domain string.
type Host struct {
	configDir string
	safeMode  bool
	logger    Logger
	registry  *Registry

	// Components loads legacy components through explicit namespace
	// registration.
	Components *Components

	// Helpers loads registered helper capabilities.
	Helpers *Helpers
}

// NewHost creates a host context and its owned registry.
func NewHost(opts Options) *Host {
	if opts.Logger == nil {
		opts.Logger = DefaultLogger()
	}

	host := &Host{
		configDir: opts.ConfigDir,
		safeMode:  opts.SafeMode,
		logger:    opts.Logger,
		registry:  NewRegistry(opts),
	}
	host.Components = newComponents(host)
	host.Helpers = newHelpers(host)
	return host
}

// NewHostFromConfig creates a host from a parsed loader configuration.
func NewHostFromConfig(cfg *LoaderConfig, logger Logger) *Host {
	return NewHost(cfg.Options(logger))
}

// Registry returns the host's integration registry.
func (h *Host) Registry() *Registry { return h.registry }

// ConfigDir returns the host configuration directory.
func (h *Host) ConfigDir() string { return h.configDir }

// SafeMode reports whether custom integration loading is disabled.
func (h *Host) SafeMode() bool { return h.safeMode }

// Logger returns the host logger.
func (h *Host) Logger() Logger { return h.logger }
