package models

// Logical field names used as UpdatePayload keys. The tracker client
// translates them to its configured custom field IDs.
const (
	FieldCeqID               = "ceq_id"
	FieldCompanyName         = "company_name"
	FieldTDAC                = "tdac"
	FieldDeviceBundleVersion = "device_bundle_version"
)

// UpdatePayload maps logical field names to the values to write on a
// tracked issue. Every entry is a non-empty value actually present on the
// chosen telemetry record; an empty payload is never sent to the tracker.
type UpdatePayload map[string]string

// IsEmpty reports whether the payload carries no fields at all.
func (p UpdatePayload) IsEmpty() bool {
	return len(p) == 0
}
