package services

import (
	"github.com/fleetsync/vinsync-agent/internal/models"
)

// Reconcile selects the authoritative telemetry record for a VIN out of the
// production and staging plane responses. Either input may be nil (absent).
//
// Rules, in order: both absent yields nil; exactly one present wins; when
// both are present the record with the later timestamp wins, ties going to
// the primary plane. This is last-write-wins across two independently
// updated planes and assumes both report comparable, synchronized clocks.
func Reconcile(primary, secondary *models.TelemetryRecord) (*models.TelemetryRecord, models.SourceLabel) {
	switch {
	case primary == nil && secondary == nil:
		return nil, ""
	case secondary == nil:
		return primary, models.SourcePrimary
	case primary == nil:
		return secondary, models.SourceSecondary
	case secondary.Timestamp.After(primary.Timestamp):
		return secondary, models.SourceSecondary
	default:
		return primary, models.SourcePrimary
	}
}
