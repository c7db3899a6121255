package constants

import "time"

const (
	DefaultWorkers       = 4
	DefaultPageSize      = 50
	DefaultFetchTimeout  = 10 * time.Second
	DefaultUpdateTimeout = 15 * time.Second
)

// Per-VIN sync outcomes
const (
	// OutcomeNoData indicates that neither telemetry plane had a record for the VIN
	OutcomeNoData = "no_data"
	// OutcomeSkipped indicates that the update gate rejected the iteration
	OutcomeSkipped = "skipped"
	// OutcomeUpdated indicates that the tracker accepted the partial update
	OutcomeUpdated = "updated"
	// OutcomeUpdateFailed indicates that the tracker rejected the partial update
	OutcomeUpdateFailed = "update_failed"
)
