// version_gate_test.go: custom-root version policy tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateVersion_AcceptedSchemes(t *testing.T) {
	accepted := []string{
		// Semantic versions.
		"1.2.3",
		"0.1.0-beta.2",
		"2.0.0+build.17",
		// Calendar versions.
		"2024.6.1",
		"2023.12.0b4",
		// Plain counters.
		"7",
		"1.4",
		"1.4.2.9",
	}
	for _, value := range accepted {
		assert.NoError(t, validateVersion(value), "expected %q to pass the gate", value)
	}
}

func TestValidateVersion_Rejected(t *testing.T) {
	rejected := []string{
		"",
		"   ",
		"banana",
		"latest",
		"v?.?.?",
		"1.2.x.banana",
	}
	for _, value := range rejected {
		assert.Error(t, validateVersion(value), "expected %q to be rejected", value)
	}
}

func TestCheckVersionGate_BuiltInExempt(t *testing.T) {
	manifest := &Manifest{Domain: "hub"}
	assert.NoError(t, checkVersionGate(manifest, true),
		"built-in integrations never need a version")
}

func TestCheckVersionGate_CustomMissingVersion(t *testing.T) {
	manifest := &Manifest{Domain: "acme"}

	err := checkVersionGate(manifest, false)
	require.Error(t, err)
	assert.Equal(t, ErrCodeVersionMissing, errorCode(err))
}

func TestCheckVersionGate_CustomInvalidVersion(t *testing.T) {
	manifest := &Manifest{Domain: "acme", Version: "not-a-version"}

	err := checkVersionGate(manifest, false)
	require.Error(t, err)
	assert.Equal(t, ErrCodeVersionInvalid, errorCode(err))
}

func TestCheckVersionGate_CustomValidVersion(t *testing.T) {
	for _, value := range []string{"1.0.0", "2024.6.1", "3"} {
		manifest := &Manifest{Domain: "acme", Version: value}
		assert.NoError(t, checkVersionGate(manifest, false))
	}
}
