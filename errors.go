// errors.go: structured error definitions for the go-integrations loader
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	stderrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for the go-integrations loader
const (
	// Domain and lookup errors (1000-1099)
	ErrCodeInvalidDomain       = "INTEGRATION_1001"
	ErrCodeIntegrationNotFound = "INTEGRATION_1002"

	// Dependency resolution errors (1100-1199)
	ErrCodeCircularDependency   = "INTEGRATION_1101"
	ErrCodeDependencyNotFound   = "INTEGRATION_1102"
	ErrCodeDependenciesUnsolved = "INTEGRATION_1103"

	// Custom root version gate errors (1200-1299)
	ErrCodeVersionMissing = "INTEGRATION_1201"
	ErrCodeVersionInvalid = "INTEGRATION_1202"

	// Manifest errors (1300-1399)
	ErrCodeManifestParse   = "INTEGRATION_1301"
	ErrCodeManifestInvalid = "INTEGRATION_1302"

	// Host and configuration errors (1400-1499)
	ErrCodeConfigDirMissing = "INTEGRATION_1401"
	ErrCodeConfigParse      = "INTEGRATION_1402"
	ErrCodeConfigInvalid    = "INTEGRATION_1403"

	// Component loading errors (1500-1599)
	ErrCodeComponentNotFound = "INTEGRATION_1501"
	ErrCodeComponentLoad     = "INTEGRATION_1502"
	ErrCodeHelperNotFound    = "INTEGRATION_1503"
)

// NewInvalidDomainError reports a malformed domain identifier.
//
// Invalid domains are rejected before any filesystem access and are
// never cached, so the same request always fails the same way.
func NewInvalidDomainError(domain string) *errors.Error {
	return errors.New(ErrCodeInvalidDomain, "Invalid domain").
		WithUserMessage("Integration domains must not contain '.'").
		WithContext("domain", domain).
		WithSeverity("error")
}

// NewIntegrationNotFoundError reports that no integration could be
// resolved for a domain on either the custom or the built-in root.
//
// Not-found outcomes are deliberately not cached: once the operator
// fixes their setup, a later lookup retries from scratch.
func NewIntegrationNotFoundError(domain string) *errors.Error {
	return errors.New(ErrCodeIntegrationNotFound, "Integration not found").
		WithUserMessage("Integration '" + domain + "' not found.").
		WithContext("domain", domain).
		WithSeverity("error")
}

// NewCircularDependencyError reports the edge that closed a dependency
// cycle during resolution. Both the hard-dependency case and the
// after-dependency (soft ordering) case use this error.
func NewCircularDependencyError(fromDomain, toDomain string) *errors.Error {
	return errors.New(ErrCodeCircularDependency, "Circular dependency detected").
		WithUserMessage("Circular dependency detected: " + fromDomain + " -> " + toDomain + ".").
		WithContext("from_domain", fromDomain).
		WithContext("to_domain", toDomain).
		WithSeverity("error")
}

// NewDependencyNotFoundError reports an unresolvable (sub)dependency
// encountered while computing a dependency closure.
func NewDependencyNotFoundError(domain string, cause error) *errors.Error {
	err := errors.New(ErrCodeDependencyNotFound, "Dependency not found").
		WithUserMessage("Unable to resolve (sub)dependency '" + domain + "'").
		WithContext("domain", domain).
		WithSeverity("error")
	if cause != nil {
		err = err.WithContext("cause", cause.Error())
	}
	return err
}

// NewDependenciesUnresolvedError reports access to a dependency closure
// that has not been computed, or whose computation failed.
func NewDependenciesUnresolvedError(domain string) *errors.Error {
	return errors.New(ErrCodeDependenciesUnsolved, "Dependencies not resolved").
		WithUserMessage("Dependencies for '" + domain + "' have not been resolved").
		WithContext("domain", domain).
		WithSeverity("error")
}

// NewVersionMissingError reports a custom integration blocked from
// loading because its manifest has no version key.
func NewVersionMissingError(domain string) *errors.Error {
	return errors.New(ErrCodeVersionMissing, "Custom integration version missing").
		WithUserMessage("The custom integration '" + domain + "' does not have a version key " +
			"in the manifest file and was blocked from loading. " +
			"Add a 'version' field to the manifest to load it.").
		WithContext("domain", domain).
		WithSeverity("error")
}

// NewVersionInvalidError reports a custom integration whose version
// string did not parse under any known versioning scheme.
func NewVersionInvalidError(domain, version string) *errors.Error {
	return errors.New(ErrCodeVersionInvalid, "Custom integration version invalid").
		WithUserMessage("The custom integration '" + domain + "' does not have a valid version key (" +
			version + ") in the manifest file and was blocked from loading. " +
			"Use a semantic or calendar version.").
		WithContext("domain", domain).
		WithContext("version", version).
		WithSeverity("error")
}

// NewManifestParseError reports a manifest file that could not be
// decoded. The caller logs it and skips the integration; one broken
// manifest never aborts a batch.
func NewManifestParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeManifestParse, "Error parsing manifest file").
		WithContext("path", path).
		WithSeverity("error")
}

// NewManifestInvalidError reports a structurally invalid manifest,
// e.g. one without a domain.
func NewManifestInvalidError(reason string) *errors.Error {
	return errors.New(ErrCodeManifestInvalid, "Invalid manifest").
		WithUserMessage(reason).
		WithSeverity("error")
}

// NewConfigDirMissingError reports a host without a configuration
// directory. No integration loading is possible in this state.
func NewConfigDirMissingError() *errors.Error {
	return errors.New(ErrCodeConfigDirMissing, "Configuration directory is not set").
		WithUserMessage("Can't load integrations - configuration directory is not set").
		WithSeverity("error")
}

// NewConfigParseError reports a loader configuration file that could
// not be read or decoded.
func NewConfigParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigParse, "Error parsing loader configuration").
		WithContext("path", path).
		WithSeverity("error")
}

// NewConfigInvalidError reports a loader configuration that decoded
// but fails validation.
func NewConfigInvalidError(reason string) *errors.Error {
	return errors.New(ErrCodeConfigInvalid, "Invalid loader configuration").
		WithUserMessage(reason).
		WithSeverity("error")
}

// NewComponentNotFoundError reports a component absent from both the
// custom and the built-in namespace.
func NewComponentNotFoundError(name string) *errors.Error {
	return errors.New(ErrCodeComponentNotFound, "Component not found").
		WithUserMessage("Unable to load component '" + name + "'").
		WithContext("component", name).
		WithSeverity("error")
}

// NewComponentLoadError reports a component whose factory failed.
// Unlike plain absence this is always logged loudly at the call site.
func NewComponentLoadError(name string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeComponentLoad, "Component failed to load").
		WithUserMessage("Error loading component '" + name + "'. Make sure all dependencies are available").
		WithContext("component", name).
		WithSeverity("error")
}

// NewHelperNotFoundError reports an unknown helper name.
func NewHelperNotFoundError(name string) *errors.Error {
	return errors.New(ErrCodeHelperNotFound, "Helper not found").
		WithUserMessage("Unable to load helper '" + name + "'").
		WithContext("helper", name).
		WithSeverity("error")
}

// errorCode extracts the go-errors code from err, or "" when err is
// not a structured error.
func errorCode(err error) string {
	var structured *errors.Error
	if stderrors.As(err, &structured) {
		return string(structured.Code)
	}
	return ""
}

// IsNotFound reports whether err represents a not-found outcome for an
// integration lookup.
func IsNotFound(err error) bool {
	return errorCode(err) == ErrCodeIntegrationNotFound
}

// IsInvalidDomain reports whether err represents a malformed domain.
func IsInvalidDomain(err error) bool {
	return errorCode(err) == ErrCodeInvalidDomain
}

// IsCircularDependency reports whether err represents a dependency
// cycle detected during resolution.
func IsCircularDependency(err error) bool {
	return errorCode(err) == ErrCodeCircularDependency
}

// CycleEdge returns the (from, to) domains of a circular dependency
// error. ok is false when err carries no cycle edge.
func CycleEdge(err error) (from, to string, ok bool) {
	var structured *errors.Error
	if !stderrors.As(err, &structured) || string(structured.Code) != ErrCodeCircularDependency {
		return "", "", false
	}
	if structured.Context == nil {
		return "", "", false
	}
	from, _ = structured.Context["from_domain"].(string)
	to, _ = structured.Context["to_domain"].(string)
	return from, to, from != "" && to != ""
}
