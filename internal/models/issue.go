package models

// TrackedIssue is one unit of sync work: a tracker issue keyed by VIN.
// It is a read-only snapshot of the remote issue; the remote system is the
// only mutation target.
type TrackedIssue struct {
	ID                    string `json:"id"`
	Key                   string `json:"key"`
	VIN                   string `json:"vin"`
	CompanyNameAlreadySet bool   `json:"company_name_already_set"`
}
