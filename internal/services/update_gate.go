package services

import (
	"github.com/fleetsync/vinsync-agent/internal/models"
)

// ShouldUpdate decides whether a mapped payload is applied to an issue.
//
// A set company name on the issue is treated as the marker that this VIN was
// already enriched, so such issues are skipped regardless of payload. An
// empty payload is skipped too: there is nothing new to write. This sentinel
// is the system's only record of "already processed" state.
func ShouldUpdate(issue models.TrackedIssue, payload models.UpdatePayload) bool {
	if issue.CompanyNameAlreadySet {
		return false
	}
	return !payload.IsEmpty()
}
