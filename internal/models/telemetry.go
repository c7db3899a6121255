package models

import (
	"time"
)

// SourceLabel identifies which telemetry plane produced a record. It is
// carried through to the sync report for audit purposes only.
type SourceLabel string

const (
	// SourcePrimary is the production telemetry plane.
	SourcePrimary SourceLabel = "primary"
	// SourceSecondary is the staging/non-production telemetry plane.
	SourceSecondary SourceLabel = "secondary"
)

// TelemetryRecord is one provider response for a VIN. Any field may be
// absent; the record is immutable once fetched.
type TelemetryRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Position    *Position `json:"position,omitempty"`
	EngineHours *float64  `json:"engine_hours,omitempty"`
	Archived    *bool     `json:"archived,omitempty"`
	CeqID       string    `json:"ceq_id,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	Devices     *Devices  `json:"devices,omitempty"`
}

// Position is the vehicle's last reported geographical position.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Devices holds the telematics hardware metadata reported for a vehicle.
// The container itself may be missing from a provider response.
type Devices struct {
	TDAC                string `json:"tdac,omitempty"`
	DeviceBundleVersion string `json:"device_bundle_version,omitempty"`
}
