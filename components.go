// components.go: typed component and helper registries with host binding
//
// Components predating the manifest system load through an explicit
// two-namespace lookup (custom first, then built-in) instead of a
// dynamic import fallback. Factories receive the owning host, so the
// binding happens in an ordinary closure rather than through runtime
// markers inspected at call time.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	"fmt"
	"sync"
)

// ComponentFactory constructs a component handle for a host. The
// handle is opaque to the loader; the embedding application decides
// what it is.
type ComponentFactory func(host *Host) (any, error)

// Components is the typed component registry of a host.
//
// Lookup order is the custom namespace, then the built-in namespace.
// A name absent from a namespace is a silent miss to the next one;
// a factory failure is logged loudly and reported. Successful loads
// are cached on the instance for the process lifetime.
type Components struct {
	host   *Host
	logger Logger

	mu      sync.Mutex
	custom  map[string]ComponentFactory
	builtin map[string]ComponentFactory
	cache   map[string]any
}

func newComponents(host *Host) *Components {
	return &Components{
		host:    host,
		logger:  host.logger,
		custom:  make(map[string]ComponentFactory),
		builtin: make(map[string]ComponentFactory),
		cache:   make(map[string]any),
	}
}

// RegisterBuiltin registers a component factory in the built-in
// namespace. Later registrations for the same name replace earlier
// ones.
func (c *Components) RegisterBuiltin(name string, factory ComponentFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builtin[name] = factory
}

// RegisterCustom registers a component factory in the custom
// namespace, which takes precedence over the built-in one.
func (c *Components) RegisterCustom(name string, factory ComponentFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.custom[name] = factory
}

// Get returns the component handle for name, loading and caching it on
// first access. In safe mode only the built-in namespace is consulted.
func (c *Components) Get(name string) (any, error) {
	c.mu.Lock()
	if handle, ok := c.cache[name]; ok {
		c.mu.Unlock()
		return handle, nil
	}

	var factory ComponentFactory
	if !c.host.safeMode {
		factory = c.custom[name]
	}
	if factory == nil {
		factory = c.builtin[name]
	}
	c.mu.Unlock()

	if factory == nil {
		return nil, NewComponentNotFoundError(name)
	}

	handle, err := c.runFactory(name, factory)
	if err != nil {
		c.logger.Error("Error loading component; make sure all dependencies are installed",
			"component", name,
			"error", err)
		return nil, NewComponentLoadError(name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.cache[name]; ok {
		// Another caller loaded it while we ran the factory.
		return cached, nil
	}
	c.cache[name] = handle
	return handle, nil
}

// GetPlatform returns a named sub-platform of a component, cached
// under "domain.platform".
func (c *Components) GetPlatform(domain, platform string) (any, error) {
	return c.Get(domain + "." + platform)
}

// runFactory invokes a factory, converting a panic into an error so
// one broken component never takes down a batch of loads.
func (c *Components) runFactory(name string, factory ComponentFactory) (handle any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("component %q factory panicked: %v", name, recovered)
		}
	}()
	return factory(c.host)
}

// Helpers is the typed helper registry of a host. Helpers live in a
// single built-in namespace and are cached on first access.
type Helpers struct {
	host   *Host
	logger Logger

	mu    sync.Mutex
	table map[string]ComponentFactory
	cache map[string]any
}

func newHelpers(host *Host) *Helpers {
	return &Helpers{
		host:   host,
		logger: host.logger,
		table:  make(map[string]ComponentFactory),
		cache:  make(map[string]any),
	}
}

// Register registers a helper factory.
func (h *Helpers) Register(name string, factory ComponentFactory) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.table[name] = factory
}

// Get returns the helper handle for name, loading and caching it on
// first access.
func (h *Helpers) Get(name string) (any, error) {
	h.mu.Lock()
	if handle, ok := h.cache[name]; ok {
		h.mu.Unlock()
		return handle, nil
	}
	factory := h.table[name]
	h.mu.Unlock()

	if factory == nil {
		return nil, NewHelperNotFoundError(name)
	}

	handle, err := factory(h.host)
	if err != nil {
		h.logger.Error("Error loading helper",
			"helper", name,
			"error", err)
		return nil, NewComponentLoadError(name, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if cached, ok := h.cache[name]; ok {
		return cached, nil
	}
	h.cache[name] = handle
	return handle, nil
}
