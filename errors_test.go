// errors_test.go: structured error taxonomy tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/agilira/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructors_Codes(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{NewInvalidDomainError("light.kitchen"), ErrCodeInvalidDomain},
		{NewIntegrationNotFoundError("ghost"), ErrCodeIntegrationNotFound},
		{NewCircularDependencyError("a", "b"), ErrCodeCircularDependency},
		{NewDependencyNotFoundError("ghost", nil), ErrCodeDependencyNotFound},
		{NewDependenciesUnresolvedError("hub"), ErrCodeDependenciesUnsolved},
		{NewVersionMissingError("acme"), ErrCodeVersionMissing},
		{NewVersionInvalidError("acme", "banana"), ErrCodeVersionInvalid},
		{NewManifestParseError("/tmp/manifest.json", stderrors.New("bad json")), ErrCodeManifestParse},
		{NewManifestInvalidError("no domain"), ErrCodeManifestInvalid},
		{NewConfigDirMissingError(), ErrCodeConfigDirMissing},
		{NewConfigParseError("/tmp/loader.json", stderrors.New("bad yaml")), ErrCodeConfigParse},
		{NewConfigInvalidError("config_dir is required"), ErrCodeConfigInvalid},
		{NewComponentNotFoundError("hub"), ErrCodeComponentNotFound},
		{NewComponentLoadError("hub", stderrors.New("boom")), ErrCodeComponentLoad},
		{NewHelperNotFoundError("threshold"), ErrCodeHelperNotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, errorCode(tt.err))
	}
}

func TestErrorContext(t *testing.T) {
	err := NewIntegrationNotFoundError("ghost")
	assert.Equal(t, "ghost", err.Context["domain"])
	assert.Equal(t, "error", err.Severity)
	assert.Contains(t, err.UserMessage(), "ghost")

	gateErr := NewVersionInvalidError("acme", "banana")
	assert.Equal(t, "acme", gateErr.Context["domain"])
	assert.Equal(t, "banana", gateErr.Context["version"])
}

func TestErrorWrapping_KeepsContext(t *testing.T) {
	cause := stderrors.New("unexpected end of JSON input")
	err := NewManifestParseError("/tmp/manifest.json", cause)

	assert.Equal(t, ErrCodeManifestParse, errorCode(err))
	assert.Equal(t, "/tmp/manifest.json", err.Context["path"])
}

func TestErrorCode_PlainError(t *testing.T) {
	assert.Empty(t, errorCode(stderrors.New("plain")))
	assert.Empty(t, errorCode(nil))
}

func TestErrorCode_WrappedStructuredError(t *testing.T) {
	inner := NewIntegrationNotFoundError("ghost")
	wrapped := fmt.Errorf("while preparing host: %w", inner)

	assert.Equal(t, ErrCodeIntegrationNotFound, errorCode(wrapped))
	assert.True(t, IsNotFound(wrapped))

	var structured *errors.Error
	require.True(t, stderrors.As(wrapped, &structured))
	assert.Equal(t, "ghost", structured.Context["domain"])
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewIntegrationNotFoundError("ghost")))
	assert.False(t, IsNotFound(NewInvalidDomainError("a.b")))

	assert.True(t, IsInvalidDomain(NewInvalidDomainError("a.b")))
	assert.False(t, IsInvalidDomain(NewIntegrationNotFoundError("ghost")))

	assert.True(t, IsCircularDependency(NewCircularDependencyError("a", "b")))
	assert.False(t, IsCircularDependency(NewDependencyNotFoundError("a", nil)))
}

func TestCycleEdge(t *testing.T) {
	from, to, ok := CycleEdge(NewCircularDependencyError("core", "hub"))
	require.True(t, ok)
	assert.Equal(t, "core", from)
	assert.Equal(t, "hub", to)

	_, _, ok = CycleEdge(NewIntegrationNotFoundError("ghost"))
	assert.False(t, ok)

	_, _, ok = CycleEdge(stderrors.New("plain"))
	assert.False(t, ok)
}
