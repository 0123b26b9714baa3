package domain

import (
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
)

// Device is a physical or virtual thing that hosts one or more entities.
// (Integration, UniqueID) is the key integrations use to re-identify a
// physical device across restarts and must be unique.
type Device struct {
	ID           ids.DeviceID `json:"id"`
	Name         string       `json:"name"`
	Manufacturer string       `json:"manufacturer,omitempty"`
	Model        string       `json:"model,omitempty"`
	AreaID       *ids.AreaID  `json:"area_id,omitempty"`
	Integration  string       `json:"integration"`
	UniqueID     string       `json:"unique_id"`
}

// Validate checks domain invariants: name must be non-empty.
func (d Device) Validate() error {
	if d.Name == "" {
		return huberr.Validation("device", "name must not be empty")
	}
	return nil
}

// DeviceBuilder builds a Device step by step, validating on Build.
type DeviceBuilder struct {
	d Device
}

// NewDeviceBuilder starts a builder with a fresh ID.
func NewDeviceBuilder() *DeviceBuilder {
	return &DeviceBuilder{d: Device{ID: ids.NewDeviceID()}}
}

// WithID overrides the generated ID.
func (b *DeviceBuilder) WithID(id ids.DeviceID) *DeviceBuilder {
	b.d.ID = id
	return b
}

// WithName sets the device's display name.
func (b *DeviceBuilder) WithName(name string) *DeviceBuilder {
	b.d.Name = name
	return b
}

// WithManufacturer sets the manufacturer.
func (b *DeviceBuilder) WithManufacturer(m string) *DeviceBuilder {
	b.d.Manufacturer = m
	return b
}

// WithModel sets the model.
func (b *DeviceBuilder) WithModel(m string) *DeviceBuilder {
	b.d.Model = m
	return b
}

// WithArea sets the owning area.
func (b *DeviceBuilder) WithArea(area ids.AreaID) *DeviceBuilder {
	b.d.AreaID = &area
	return b
}

// WithIntegration sets the owning integration name and its unique ID for
// this device, used together as the re-identification key.
func (b *DeviceBuilder) WithIntegration(integration, uniqueID string) *DeviceBuilder {
	b.d.Integration = integration
	b.d.UniqueID = uniqueID
	return b
}

// Build validates and returns the constructed Device.
func (b *DeviceBuilder) Build() (Device, error) {
	if err := b.d.Validate(); err != nil {
		return Device{}, err
	}
	return b.d, nil
}
