// builtin_matchers.go: static discovery tables for bundled integrations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

// BuiltinMatchers carries the static discovery matcher tables of the
// bundled integrations. The embedding application generates and
// supplies them; the aggregator merges custom integration fragments on
// top without modifying these tables.
type BuiltinMatchers struct {
	// Network maps advertised service types to matchers.
	Network map[string][]NetworkMatcher

	// Radio lists short-range-radio signature matchers.
	Radio []RadioMatcher

	// USB lists wired-device vendor/product matchers.
	USB []USBMatcher

	// DHCP lists DHCP-style lease matchers.
	DHCP []DHCPMatcher

	// Pairing maps device model identifiers to owning domains.
	Pairing map[string]string

	// Service maps owning domains to service-discovery matchers.
	Service map[string][]ServiceMatcher

	// Bus maps owning domains to message-bus topic filters.
	Bus map[string][]string

	// Flows maps integration types to domains offering config flows.
	Flows map[IntegrationType][]string
}

// DefaultBuiltinMatchers returns empty tables: no bundled matchers.
func DefaultBuiltinMatchers() *BuiltinMatchers {
	return &BuiltinMatchers{
		Network: make(map[string][]NetworkMatcher),
		Pairing: make(map[string]string),
		Service: make(map[string][]ServiceMatcher),
		Bus:     make(map[string][]string),
		Flows:   make(map[IntegrationType][]string),
	}
}
