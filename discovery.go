// discovery.go: aggregated discovery matcher tables across all integrations
//
// Each discovery protocol gets one accessor that merges the built-in
// static table with the matcher fragments of every custom integration,
// tagging contributed entries with the owning domain. Tables are built
// at most once and cached for the process lifetime; integrations
// loaded afterwards do not retroactively appear.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	"context"
	"sort"
	"strings"
)

// NetworkMatchers returns the merged network-advertisement matcher
// table, keyed by advertised service type.
//
// Deprecated top-level matcher properties found in custom manifests
// are relocated into the nested properties map, lower-cased, with a
// warning per occurrence.
func (r *Registry) NetworkMatchers(ctx context.Context) map[string][]NetworkMatcher {
	r.aggMu.Lock()
	if r.aggNetwork != nil {
		table := r.aggNetwork
		r.aggMu.Unlock()
		return table
	}
	r.aggMu.Unlock()

	built, _, _ := r.aggGroup.Do("network", func() (any, error) {
		// Re-check inside the flight: a caller that read an empty cache
		// but joined after a completed flight must not rebuild.
		r.aggMu.Lock()
		if r.aggNetwork != nil {
			table := r.aggNetwork
			r.aggMu.Unlock()
			return table, nil
		}
		r.aggMu.Unlock()

		table := make(map[string][]NetworkMatcher, len(r.builtin.Network))
		for serviceType, matchers := range r.builtin.Network {
			table[serviceType] = append([]NetworkMatcher(nil), matchers...)
		}

		for _, integ := range r.sortedCustom(ctx) {
			for _, entry := range integ.Manifest().Network {
				if entry.Type == "" {
					r.logger.Warn("Network matcher entry without a type ignored",
						"domain", integ.Domain())
					continue
				}
				table[entry.Type] = append(table[entry.Type], r.networkMatcherFromEntry(integ.Domain(), entry))
			}
		}

		r.aggMu.Lock()
		r.aggNetwork = table
		r.aggMu.Unlock()
		return table, nil
	})
	return built.(map[string][]NetworkMatcher)
}

// networkMatcherFromEntry converts a manifest fragment into a tagged
// matcher, migrating deprecated top-level properties.
func (r *Registry) networkMatcherFromEntry(domain string, entry NetworkEntry) NetworkMatcher {
	matcher := NetworkMatcher{Domain: domain, Name: entry.Name}
	if len(entry.Properties) > 0 {
		matcher.Properties = make(map[string]string, len(entry.Properties))
		for key, value := range entry.Properties {
			matcher.Properties[key] = value
		}
	}

	for _, prop := range movedNetworkProps {
		value, ok := entry.legacyProps[prop]
		if !ok {
			continue
		}
		r.logger.Warn("Matching a network property at the matcher top level is deprecated; "+
			"move it into the nested properties map",
			"domain", domain,
			"property", prop)
		if matcher.Properties == nil {
			matcher.Properties = make(map[string]string, 1)
		}
		matcher.Properties[prop] = strings.ToLower(value)
	}
	return matcher
}

// RadioMatchers returns the merged short-range-radio matcher list.
func (r *Registry) RadioMatchers(ctx context.Context) []RadioMatcher {
	r.aggMu.Lock()
	if r.aggRadio != nil {
		matchers := r.aggRadio
		r.aggMu.Unlock()
		return matchers
	}
	r.aggMu.Unlock()

	built, _, _ := r.aggGroup.Do("radio", func() (any, error) {
		r.aggMu.Lock()
		if r.aggRadio != nil {
			matchers := r.aggRadio
			r.aggMu.Unlock()
			return matchers, nil
		}
		r.aggMu.Unlock()

		matchers := append([]RadioMatcher(nil), r.builtin.Radio...)
		for _, integ := range r.sortedCustom(ctx) {
			for _, entry := range integ.Manifest().Radio {
				entry.Domain = integ.Domain()
				matchers = append(matchers, entry)
			}
		}
		r.aggMu.Lock()
		r.aggRadio = matchers
		r.aggMu.Unlock()
		return matchers, nil
	})
	return built.([]RadioMatcher)
}

// USBMatchers returns the merged wired-device matcher list. The
// advisory known_devices manifest field is stripped from aggregated
// entries.
func (r *Registry) USBMatchers(ctx context.Context) []USBMatcher {
	r.aggMu.Lock()
	if r.aggUSB != nil {
		matchers := r.aggUSB
		r.aggMu.Unlock()
		return matchers
	}
	r.aggMu.Unlock()

	built, _, _ := r.aggGroup.Do("usb", func() (any, error) {
		r.aggMu.Lock()
		if r.aggUSB != nil {
			matchers := r.aggUSB
			r.aggMu.Unlock()
			return matchers, nil
		}
		r.aggMu.Unlock()

		matchers := append([]USBMatcher(nil), r.builtin.USB...)
		for _, integ := range r.sortedCustom(ctx) {
			for _, entry := range integ.Manifest().USB {
				entry.Domain = integ.Domain()
				entry.KnownDevices = nil
				matchers = append(matchers, entry)
			}
		}
		r.aggMu.Lock()
		r.aggUSB = matchers
		r.aggMu.Unlock()
		return matchers, nil
	})
	return built.([]USBMatcher)
}

// DHCPMatchers returns the merged DHCP-style matcher list.
func (r *Registry) DHCPMatchers(ctx context.Context) []DHCPMatcher {
	r.aggMu.Lock()
	if r.aggDHCP != nil {
		matchers := r.aggDHCP
		r.aggMu.Unlock()
		return matchers
	}
	r.aggMu.Unlock()

	built, _, _ := r.aggGroup.Do("dhcp", func() (any, error) {
		r.aggMu.Lock()
		if r.aggDHCP != nil {
			matchers := r.aggDHCP
			r.aggMu.Unlock()
			return matchers, nil
		}
		r.aggMu.Unlock()

		matchers := append([]DHCPMatcher(nil), r.builtin.DHCP...)
		for _, integ := range r.sortedCustom(ctx) {
			for _, entry := range integ.Manifest().DHCP {
				entry.Domain = integ.Domain()
				matchers = append(matchers, entry)
			}
		}
		r.aggMu.Lock()
		r.aggDHCP = matchers
		r.aggMu.Unlock()
		return matchers, nil
	})
	return built.([]DHCPMatcher)
}

// PairingModels returns the merged pairing-hint table mapping device
// model identifiers to owning domains.
func (r *Registry) PairingModels(ctx context.Context) map[string]string {
	r.aggMu.Lock()
	if r.aggPairing != nil {
		models := r.aggPairing
		r.aggMu.Unlock()
		return models
	}
	r.aggMu.Unlock()

	built, _, _ := r.aggGroup.Do("pairing", func() (any, error) {
		r.aggMu.Lock()
		if r.aggPairing != nil {
			models := r.aggPairing
			r.aggMu.Unlock()
			return models, nil
		}
		r.aggMu.Unlock()

		models := make(map[string]string, len(r.builtin.Pairing))
		for model, domain := range r.builtin.Pairing {
			models[model] = domain
		}
		for _, integ := range r.sortedCustom(ctx) {
			pairing := integ.Manifest().Pairing
			if pairing == nil {
				continue
			}
			for _, model := range pairing.Models {
				models[model] = integ.Domain()
			}
		}
		r.aggMu.Lock()
		r.aggPairing = models
		r.aggMu.Unlock()
		return models, nil
	})
	return built.(map[string]string)
}

// ServiceMatchers returns the merged service-discovery table, keyed by
// owning domain.
func (r *Registry) ServiceMatchers(ctx context.Context) map[string][]ServiceMatcher {
	r.aggMu.Lock()
	if r.aggService != nil {
		table := r.aggService
		r.aggMu.Unlock()
		return table
	}
	r.aggMu.Unlock()

	built, _, _ := r.aggGroup.Do("service", func() (any, error) {
		r.aggMu.Lock()
		if r.aggService != nil {
			table := r.aggService
			r.aggMu.Unlock()
			return table, nil
		}
		r.aggMu.Unlock()

		table := make(map[string][]ServiceMatcher, len(r.builtin.Service))
		for domain, matchers := range r.builtin.Service {
			table[domain] = append([]ServiceMatcher(nil), matchers...)
		}
		for _, integ := range r.sortedCustom(ctx) {
			entries := integ.Manifest().Service
			if len(entries) == 0 {
				continue
			}
			matchers := make([]ServiceMatcher, 0, len(entries))
			for _, entry := range entries {
				matchers = append(matchers, ServiceMatcher(entry))
			}
			table[integ.Domain()] = matchers
		}
		r.aggMu.Lock()
		r.aggService = table
		r.aggMu.Unlock()
		return table, nil
	})
	return built.(map[string][]ServiceMatcher)
}

// BusTopics returns the merged message-bus topic filter table, keyed
// by owning domain.
func (r *Registry) BusTopics(ctx context.Context) map[string][]string {
	r.aggMu.Lock()
	if r.aggBus != nil {
		table := r.aggBus
		r.aggMu.Unlock()
		return table
	}
	r.aggMu.Unlock()

	built, _, _ := r.aggGroup.Do("bus", func() (any, error) {
		r.aggMu.Lock()
		if r.aggBus != nil {
			table := r.aggBus
			r.aggMu.Unlock()
			return table, nil
		}
		r.aggMu.Unlock()

		table := make(map[string][]string, len(r.builtin.Bus))
		for domain, topics := range r.builtin.Bus {
			table[domain] = append([]string(nil), topics...)
		}
		for _, integ := range r.sortedCustom(ctx) {
			topics := integ.Manifest().Bus
			if len(topics) == 0 {
				continue
			}
			table[integ.Domain()] = append([]string(nil), topics...)
		}
		r.aggMu.Lock()
		r.aggBus = table
		r.aggMu.Unlock()
		return table, nil
	})
	return built.(map[string][]string)
}

// ConfigFlows returns every domain offering configuration-flow setup,
// optionally filtered by integration type. Built-in flow domains come
// from the static table; custom integrations contribute based on their
// manifest config_flow flag.
func (r *Registry) ConfigFlows(ctx context.Context, typeFilter IntegrationType) map[string]struct{} {
	flows := make(map[string]struct{})

	for flowType, domains := range r.builtin.Flows {
		if typeFilter != "" && flowType != typeFilter {
			continue
		}
		for _, domain := range domains {
			flows[domain] = struct{}{}
		}
	}

	for domain, integ := range r.customIntegrations(ctx) {
		if !integ.ConfigFlow() {
			continue
		}
		if typeFilter != "" && integ.IntegrationType() != typeFilter {
			continue
		}
		flows[domain] = struct{}{}
	}

	return flows
}

// sortedCustom returns the custom integrations in stable domain order
// so aggregated tables are deterministic.
func (r *Registry) sortedCustom(ctx context.Context) []*Integration {
	custom := r.customIntegrations(ctx)
	domains := make([]string, 0, len(custom))
	for domain := range custom {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	integrations := make([]*Integration, 0, len(domains))
	for _, domain := range domains {
		integrations = append(integrations, custom[domain])
	}
	return integrations
}
