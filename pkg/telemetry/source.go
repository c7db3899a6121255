package telemetry

import (
	"context"

	"github.com/fleetsync/vinsync-agent/internal/models"
)

// Source performs a single telemetry lookup per VIN against one data plane.
// A nil record with a nil error means the plane has no data for the VIN.
type Source interface {
	Fetch(ctx context.Context, vin string) (*models.TelemetryRecord, error)
	Label() models.SourceLabel
}
