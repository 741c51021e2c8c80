// version_gate.go: version validation for custom-root integrations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
)

// versionScheme is one accepted way of writing an integration version.
// A version string passes the gate when at least one scheme accepts it.
type versionScheme struct {
	name  string
	parse func(value string) error
}

var calverPattern = regexp.MustCompile(`^\d{4}\.\d{1,2}(\.\d+)*([.-].+)?$`)
var simplePattern = regexp.MustCompile(`^\d+(\.\d+)*$`)

// versionSchemes are tried in order. Semver is the preferred scheme;
// calendar versions (2024.6.1) and plain counters (7, 1.4) are also
// accepted because the custom integration ecosystem uses all three.
var versionSchemes = []versionScheme{
	{
		name: "semver",
		parse: func(value string) error {
			_, err := version.NewSemver(value)
			return err
		},
	},
	{
		name: "calver",
		parse: func(value string) error {
			if !calverPattern.MatchString(value) {
				return fmt.Errorf("not a calendar version: %q", value)
			}
			_, err := version.NewVersion(value)
			return err
		},
	},
	{
		name: "simple",
		parse: func(value string) error {
			if !simplePattern.MatchString(value) {
				return fmt.Errorf("not a simple version: %q", value)
			}
			_, err := version.NewVersion(value)
			return err
		},
	},
}

// validateVersion checks a version string against every known scheme
// and returns nil as soon as one accepts it.
func validateVersion(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("version is empty")
	}

	var reasons []string
	for _, scheme := range versionSchemes {
		err := scheme.parse(value)
		if err == nil {
			return nil
		}
		reasons = append(reasons, scheme.name+": "+err.Error())
	}
	return fmt.Errorf("version %q matches no known scheme (%s)", value, strings.Join(reasons, "; "))
}

// checkVersionGate enforces the custom-root version policy on a parsed
// manifest. Built-in integrations are exempt.
func checkVersionGate(manifest *Manifest, builtIn bool) error {
	if builtIn {
		return nil
	}
	if manifest.Version == "" {
		return NewVersionMissingError(manifest.Domain)
	}
	if err := validateVersion(manifest.Version); err != nil {
		return NewVersionInvalidError(manifest.Domain, manifest.Version)
	}
	return nil
}
