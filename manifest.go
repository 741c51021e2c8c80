// manifest.go: integration manifest parsing and discovery matcher fragments
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	"encoding/json"
	"fmt"
)

// IntegrationType classifies an integration in its manifest.
type IntegrationType string

const (
	IntegrationTypeEntity      IntegrationType = "entity"
	IntegrationTypeIntegration IntegrationType = "integration"
	IntegrationTypeHardware    IntegrationType = "hardware"
	IntegrationTypeHelper      IntegrationType = "helper"
	IntegrationTypeSystem      IntegrationType = "system"
)

// knownIntegrationTypes is the closed set accepted in manifests.
var knownIntegrationTypes = map[IntegrationType]struct{}{
	IntegrationTypeEntity:      {},
	IntegrationTypeIntegration: {},
	IntegrationTypeHardware:    {},
	IntegrationTypeHelper:      {},
	IntegrationTypeSystem:      {},
}

// Manifest is the static descriptor of an integration, decoded from
// the manifest.json in its directory. It is immutable after load.
//
// None of the fields are required to be present in the file except
// domain; when present they must not hold null values.
type Manifest struct {
	Domain            string          `json:"domain"`
	Name              string          `json:"name"`
	IntegrationType   IntegrationType `json:"integration_type,omitempty"`
	Disabled          string          `json:"disabled,omitempty"`
	Dependencies      []string        `json:"dependencies,omitempty"`
	AfterDependencies []string        `json:"after_dependencies,omitempty"`
	Requirements      []string        `json:"requirements,omitempty"`
	ConfigFlow        bool            `json:"config_flow,omitempty"`
	Version           string          `json:"version,omitempty"`

	// Per-protocol discovery matcher fragments.
	Network []NetworkEntry      `json:"network,omitempty"`
	Radio   []RadioMatcher      `json:"radio,omitempty"`
	DHCP    []DHCPMatcher       `json:"dhcp,omitempty"`
	USB     []USBMatcher        `json:"usb,omitempty"`
	Pairing *PairingHints       `json:"pairing,omitempty"`
	Service []map[string]string `json:"service,omitempty"`
	Bus     []string            `json:"bus,omitempty"`
}

// movedNetworkProps are the deprecated top-level network matcher
// properties that are relocated into the nested properties map during
// aggregation.
var movedNetworkProps = [...]string{"macaddress", "model", "manufacturer"}

// NetworkEntry is a network-advertisement matcher fragment. In the
// manifest it may be either a bare service type string or an object
// with a type plus optional filters.
type NetworkEntry struct {
	Type       string
	Name       string
	Properties map[string]string

	// legacyProps holds deprecated top-level properties found in the
	// manifest; they are migrated (and warned about) at aggregation.
	legacyProps map[string]string
}

// UnmarshalJSON accepts both the bare-string and the object form.
func (e *NetworkEntry) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		e.Type = asString
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("network matcher entry must be a string or an object: %w", err)
	}

	if typeRaw, ok := raw["type"]; ok {
		if err := json.Unmarshal(typeRaw, &e.Type); err != nil {
			return fmt.Errorf("network matcher 'type' must be a string: %w", err)
		}
	}
	if nameRaw, ok := raw["name"]; ok {
		if err := json.Unmarshal(nameRaw, &e.Name); err != nil {
			return fmt.Errorf("network matcher 'name' must be a string: %w", err)
		}
	}
	if propsRaw, ok := raw["properties"]; ok {
		if err := json.Unmarshal(propsRaw, &e.Properties); err != nil {
			return fmt.Errorf("network matcher 'properties' must be a string map: %w", err)
		}
	}

	for _, prop := range movedNetworkProps {
		propRaw, ok := raw[prop]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(propRaw, &value); err != nil {
			return fmt.Errorf("network matcher %q must be a string: %w", prop, err)
		}
		if value == "" {
			continue
		}
		if e.legacyProps == nil {
			e.legacyProps = make(map[string]string)
		}
		e.legacyProps[prop] = value
	}

	return nil
}

// NetworkMatcher is an aggregated network-advertisement matcher tagged
// with its owning domain.
type NetworkMatcher struct {
	Domain     string            `json:"domain"`
	Name       string            `json:"name,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// RadioMatcher matches a short-range-radio advertisement signature.
type RadioMatcher struct {
	Domain                string `json:"domain,omitempty"`
	LocalName             string `json:"local_name,omitempty"`
	ServiceUUID           string `json:"service_uuid,omitempty"`
	ServiceDataUUID       string `json:"service_data_uuid,omitempty"`
	ManufacturerID        int    `json:"manufacturer_id,omitempty"`
	ManufacturerDataStart []int  `json:"manufacturer_data_start,omitempty"`
	Connectable           *bool  `json:"connectable,omitempty"`
}

// DHCPMatcher matches a DHCP-style lease announcement.
type DHCPMatcher struct {
	Domain            string `json:"domain,omitempty"`
	MACAddress        string `json:"macaddress,omitempty"`
	Hostname          string `json:"hostname,omitempty"`
	RegisteredDevices bool   `json:"registered_devices,omitempty"`
}

// USBMatcher matches a wired device by vendor/product signature.
// KnownDevices is advisory manifest documentation and is stripped
// during aggregation.
type USBMatcher struct {
	Domain       string   `json:"domain,omitempty"`
	VendorID     string   `json:"vid,omitempty"`
	ProductID    string   `json:"pid,omitempty"`
	SerialNumber string   `json:"serial_number,omitempty"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Description  string   `json:"description,omitempty"`
	KnownDevices []string `json:"known_devices,omitempty"`
}

// PairingHints carries pairing-hint matcher fragments: device model
// identifiers owned by the integration.
type PairingHints struct {
	Models []string `json:"models,omitempty"`
}

// ServiceMatcher is one aggregated service-discovery header match.
type ServiceMatcher map[string]string

// parseManifest decodes and validates a manifest document.
//
// A manifest without a domain is invalid and rejected. An absent
// integration type defaults to "integration"; an unknown one is
// rejected.
func parseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	if manifest.Domain == "" {
		return nil, NewManifestInvalidError("Manifest has no domain")
	}
	if manifest.IntegrationType == "" {
		manifest.IntegrationType = IntegrationTypeIntegration
	} else if _, ok := knownIntegrationTypes[manifest.IntegrationType]; !ok {
		return nil, NewManifestInvalidError("Manifest has unknown integration_type '" + string(manifest.IntegrationType) + "'")
	}
	if manifest.Name == "" {
		manifest.Name = manifest.Domain
	}
	return &manifest, nil
}

// LegacyManifest synthesizes a manifest for a component predating the
// manifest system. It carries no dependencies or discovery fragments.
func LegacyManifest(domain string) *Manifest {
	return &Manifest{
		Domain:          domain,
		Name:            domain,
		IntegrationType: IntegrationTypeIntegration,
	}
}
