// manifest_test.go: manifest parsing and matcher fragment decoding tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest_Minimal(t *testing.T) {
	manifest, err := parseManifest([]byte(`{"domain": "hub"}`))
	require.NoError(t, err)

	assert.Equal(t, "hub", manifest.Domain)
	assert.Equal(t, "hub", manifest.Name, "name should default to the domain")
	assert.Equal(t, IntegrationTypeIntegration, manifest.IntegrationType,
		"integration type should default to 'integration'")
	assert.Empty(t, manifest.Dependencies)
	assert.Empty(t, manifest.Version)
}

func TestParseManifest_FullDocument(t *testing.T) {
	data := []byte(`{
		"domain": "acme_gateway",
		"name": "ACME Gateway",
		"integration_type": "hardware",
		"dependencies": ["network", "storage"],
		"after_dependencies": ["cloud"],
		"requirements": ["acme-sdk==2.1.0"],
		"config_flow": true,
		"version": "2024.6.1"
	}`)

	manifest, err := parseManifest(data)
	require.NoError(t, err)

	assert.Equal(t, "acme_gateway", manifest.Domain)
	assert.Equal(t, "ACME Gateway", manifest.Name)
	assert.Equal(t, IntegrationTypeHardware, manifest.IntegrationType)
	assert.Equal(t, []string{"network", "storage"}, manifest.Dependencies)
	assert.Equal(t, []string{"cloud"}, manifest.AfterDependencies)
	assert.Equal(t, []string{"acme-sdk==2.1.0"}, manifest.Requirements)
	assert.True(t, manifest.ConfigFlow)
	assert.Equal(t, "2024.6.1", manifest.Version)
}

func TestParseManifest_MissingDomain(t *testing.T) {
	_, err := parseManifest([]byte(`{"name": "No Domain"}`))
	require.Error(t, err)
	assert.Equal(t, ErrCodeManifestInvalid, errorCode(err))
}

func TestParseManifest_UnknownIntegrationType(t *testing.T) {
	_, err := parseManifest([]byte(`{"domain": "hub", "integration_type": "gadget"}`))
	require.Error(t, err)
	assert.Equal(t, ErrCodeManifestInvalid, errorCode(err))
}

func TestParseManifest_MalformedJSON(t *testing.T) {
	_, err := parseManifest([]byte(`{"domain": `))
	require.Error(t, err)
}

func TestNetworkEntry_BareString(t *testing.T) {
	var entry NetworkEntry
	require.NoError(t, json.Unmarshal([]byte(`"_hue._tcp.local."`), &entry))

	assert.Equal(t, "_hue._tcp.local.", entry.Type)
	assert.Empty(t, entry.Name)
	assert.Empty(t, entry.Properties)
	assert.Empty(t, entry.legacyProps)
}

func TestNetworkEntry_ObjectForm(t *testing.T) {
	data := []byte(`{
		"type": "_printer._tcp.local.",
		"name": "brother*",
		"properties": {"product": "laser*"}
	}`)

	var entry NetworkEntry
	require.NoError(t, json.Unmarshal(data, &entry))

	assert.Equal(t, "_printer._tcp.local.", entry.Type)
	assert.Equal(t, "brother*", entry.Name)
	assert.Equal(t, map[string]string{"product": "laser*"}, entry.Properties)
	assert.Empty(t, entry.legacyProps)
}

func TestNetworkEntry_LegacyTopLevelProperties(t *testing.T) {
	data := []byte(`{
		"type": "_gateway._tcp.local.",
		"macaddress": "AB:CD:EF*",
		"model": "GW-1000",
		"manufacturer": "ACME"
	}`)

	var entry NetworkEntry
	require.NoError(t, json.Unmarshal(data, &entry))

	assert.Equal(t, "_gateway._tcp.local.", entry.Type)
	assert.Equal(t, map[string]string{
		"macaddress":   "AB:CD:EF*",
		"model":        "GW-1000",
		"manufacturer": "ACME",
	}, entry.legacyProps, "deprecated top-level keys are staged for migration, not dropped")
	assert.Empty(t, entry.Properties, "migration happens at aggregation, not at parse")
}

func TestNetworkEntry_RejectsNonStringForms(t *testing.T) {
	var entry NetworkEntry
	assert.Error(t, json.Unmarshal([]byte(`42`), &entry))
	assert.Error(t, json.Unmarshal([]byte(`{"type": 42}`), &entry))
}

func TestParseManifest_DiscoveryFragments(t *testing.T) {
	data := []byte(`{
		"domain": "acme",
		"version": "1.0.0",
		"network": ["_acme._tcp.local.", {"type": "_hap._tcp.local.", "name": "acme*"}],
		"radio": [{"local_name": "ACME-*", "manufacturer_id": 76, "connectable": false}],
		"dhcp": [{"macaddress": "AABBCC*", "hostname": "acme-*"}],
		"usb": [{"vid": "10C4", "pid": "EA60", "known_devices": ["dongle v2"]}],
		"pairing": {"models": ["ACME-100"]},
		"service": [{"st": "urn:acme:device:gateway:1"}]
	}`)

	manifest, err := parseManifest(data)
	require.NoError(t, err)

	require.Len(t, manifest.Network, 2)
	assert.Equal(t, "_acme._tcp.local.", manifest.Network[0].Type)
	assert.Equal(t, "acme*", manifest.Network[1].Name)

	require.Len(t, manifest.Radio, 1)
	assert.Equal(t, "ACME-*", manifest.Radio[0].LocalName)
	assert.Equal(t, 76, manifest.Radio[0].ManufacturerID)
	require.NotNil(t, manifest.Radio[0].Connectable)
	assert.False(t, *manifest.Radio[0].Connectable)

	require.Len(t, manifest.DHCP, 1)
	assert.Equal(t, "AABBCC*", manifest.DHCP[0].MACAddress)

	require.Len(t, manifest.USB, 1)
	assert.Equal(t, "10C4", manifest.USB[0].VendorID)
	assert.Equal(t, []string{"dongle v2"}, manifest.USB[0].KnownDevices)

	require.NotNil(t, manifest.Pairing)
	assert.Equal(t, []string{"ACME-100"}, manifest.Pairing.Models)

	require.Len(t, manifest.Service, 1)
	assert.Equal(t, "urn:acme:device:gateway:1", manifest.Service[0]["st"])
}

func TestLegacyManifest(t *testing.T) {
	manifest := LegacyManifest("old_switch")

	assert.Equal(t, "old_switch", manifest.Domain)
	assert.Equal(t, "old_switch", manifest.Name)
	assert.Equal(t, IntegrationTypeIntegration, manifest.IntegrationType)
	assert.Empty(t, manifest.Dependencies)
	assert.Empty(t, manifest.Version)
}
