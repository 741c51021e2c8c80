// components_test.go: typed component and helper registry tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHost(t *testing.T, safeMode bool) *Host {
	t.Helper()
	return NewHost(Options{
		ConfigDir:   t.TempDir(),
		BuiltinRoot: t.TempDir(),
		SafeMode:    safeMode,
		Logger:      NewTestLogger(),
	})
}

func TestComponents_CustomPrecedesBuiltin(t *testing.T) {
	host := newTestHost(t, false)
	host.Components.RegisterBuiltin("hub", func(h *Host) (any, error) {
		return "builtin hub", nil
	})
	host.Components.RegisterCustom("hub", func(h *Host) (any, error) {
		return "custom hub", nil
	})

	handle, err := host.Components.Get("hub")
	require.NoError(t, err)
	assert.Equal(t, "custom hub", handle)
}

func TestComponents_SilentMiss(t *testing.T) {
	logger := NewTestLogger()
	host := NewHost(Options{ConfigDir: t.TempDir(), BuiltinRoot: t.TempDir(), Logger: logger})

	_, err := host.Components.Get("ghost")
	require.Error(t, err)
	assert.Equal(t, ErrCodeComponentNotFound, errorCode(err))
	assert.Zero(t, logger.CountLevel("ERROR"), "absence is a quiet outcome")
}

func TestComponents_FactoryErrorIsLoud(t *testing.T) {
	logger := NewTestLogger()
	host := NewHost(Options{ConfigDir: t.TempDir(), BuiltinRoot: t.TempDir(), Logger: logger})
	host.Components.RegisterBuiltin("flaky", func(h *Host) (any, error) {
		return nil, errors.New("driver init failed")
	})

	_, err := host.Components.Get("flaky")
	require.Error(t, err)
	assert.Equal(t, ErrCodeComponentLoad, errorCode(err))
	assert.True(t, logger.HasMessage("ERROR",
		"Error loading component; make sure all dependencies are installed"))
}

func TestComponents_FactoryPanicIsContained(t *testing.T) {
	host := newTestHost(t, false)
	host.Components.RegisterBuiltin("bomb", func(h *Host) (any, error) {
		panic("boom")
	})

	_, err := host.Components.Get("bomb")
	require.Error(t, err)
	assert.Equal(t, ErrCodeComponentLoad, errorCode(err))
}

func TestComponents_CachesHandles(t *testing.T) {
	host := newTestHost(t, false)
	loads := 0
	host.Components.RegisterBuiltin("hub", func(h *Host) (any, error) {
		loads++
		return &struct{ name string }{"hub"}, nil
	})

	first, err := host.Components.Get("hub")
	require.NoError(t, err)
	second, err := host.Components.Get("hub")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loads, "the factory runs at most once")
}

func TestComponents_SafeModeSkipsCustomNamespace(t *testing.T) {
	host := newTestHost(t, true)
	host.Components.RegisterBuiltin("hub", func(h *Host) (any, error) {
		return "builtin hub", nil
	})
	host.Components.RegisterCustom("hub", func(h *Host) (any, error) {
		return "custom hub", nil
	})
	host.Components.RegisterCustom("extra", func(h *Host) (any, error) {
		return "custom extra", nil
	})

	handle, err := host.Components.Get("hub")
	require.NoError(t, err)
	assert.Equal(t, "builtin hub", handle)

	_, err = host.Components.Get("extra")
	require.Error(t, err)
	assert.Equal(t, ErrCodeComponentNotFound, errorCode(err))
}

func TestComponents_FactoryReceivesOwningHost(t *testing.T) {
	host := newTestHost(t, false)
	host.Components.RegisterBuiltin("hub", func(h *Host) (any, error) {
		return h, nil
	})

	handle, err := host.Components.Get("hub")
	require.NoError(t, err)
	assert.Same(t, host, handle)
}

func TestComponents_GetPlatform(t *testing.T) {
	host := newTestHost(t, false)
	host.Components.RegisterBuiltin("hub.sensor", func(h *Host) (any, error) {
		return "hub sensor platform", nil
	})

	handle, err := host.Components.GetPlatform("hub", "sensor")
	require.NoError(t, err)
	assert.Equal(t, "hub sensor platform", handle)

	_, err = host.Components.GetPlatform("hub", "switch")
	require.Error(t, err)
	assert.Equal(t, ErrCodeComponentNotFound, errorCode(err))
}

func TestIntegration_ComponentLookup(t *testing.T) {
	host := newTestHost(t, false)
	writeManifest(t, host.Registry().opts.BuiltinRoot, "hub", `{"domain": "hub"}`)
	host.Components.RegisterBuiltin("hub", func(h *Host) (any, error) {
		return "hub component", nil
	})

	integ, err := host.Registry().GetIntegration(context.Background(), "hub")
	require.NoError(t, err)

	handle, err := integ.Component(host)
	require.NoError(t, err)
	assert.Equal(t, "hub component", handle)
}

func TestHelpers_RegisterAndGet(t *testing.T) {
	host := newTestHost(t, false)
	loads := 0
	host.Helpers.Register("threshold", func(h *Host) (any, error) {
		loads++
		return "threshold helper", nil
	})

	first, err := host.Helpers.Get("threshold")
	require.NoError(t, err)
	assert.Equal(t, "threshold helper", first)

	_, err = host.Helpers.Get("threshold")
	require.NoError(t, err)
	assert.Equal(t, 1, loads)

	_, err = host.Helpers.Get("ghost")
	require.Error(t, err)
	assert.Equal(t, ErrCodeHelperNotFound, errorCode(err))
}

func TestHelpers_FactoryError(t *testing.T) {
	logger := NewTestLogger()
	host := NewHost(Options{ConfigDir: t.TempDir(), BuiltinRoot: t.TempDir(), Logger: logger})
	host.Helpers.Register("flaky", func(h *Host) (any, error) {
		return nil, errors.New("bad state")
	})

	_, err := host.Helpers.Get("flaky")
	require.Error(t, err)
	assert.Equal(t, ErrCodeComponentLoad, errorCode(err))
	assert.True(t, logger.HasMessage("ERROR", "Error loading helper"))
}
