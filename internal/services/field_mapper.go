package services

import (
	"github.com/Masterminds/semver/v3"

	"github.com/fleetsync/vinsync-agent/internal/models"
)

// MapFields projects the authoritative telemetry record onto the tracker's
// update field set. Absent or empty source values are omitted entirely; a
// missing Devices container suppresses both device entries. The returned
// payload may be empty, in which case the update gate drops the iteration.
func MapFields(record *models.TelemetryRecord) models.UpdatePayload {
	payload := models.UpdatePayload{}

	if record.CeqID != "" {
		payload[models.FieldCeqID] = record.CeqID
	}
	if record.CompanyName != "" {
		payload[models.FieldCompanyName] = record.CompanyName
	}

	if record.Devices != nil {
		if record.Devices.TDAC != "" {
			payload[models.FieldTDAC] = record.Devices.TDAC
		}
		if v := record.Devices.DeviceBundleVersion; v != "" {
			payload[models.FieldDeviceBundleVersion] = normalizeBundleVersion(v)
		}
	}

	return payload
}

// normalizeBundleVersion canonicalizes well-formed semver bundle versions
// (e.g. "v1.2.0" and "1.2" both become "1.2.0"). Anything the provider
// reports that does not parse as semver passes through untouched.
func normalizeBundleVersion(raw string) string {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return raw
	}
	return v.String()
}
