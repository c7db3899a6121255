package tracker

// FieldIDs maps the logical sync fields onto the tracker's custom field IDs.
// All five must be configured; Preflight verifies they exist remotely.
type FieldIDs struct {
	VIN                 string `yaml:"vin"`
	CeqID               string `yaml:"ceq_id"`
	CompanyName         string `yaml:"company_name"`
	TDAC                string `yaml:"tdac"`
	DeviceBundleVersion string `yaml:"device_bundle_version"`
}

// All returns the configured field IDs as a slice, in a fixed order.
func (f FieldIDs) All() []string {
	return []string{f.VIN, f.CeqID, f.CompanyName, f.TDAC, f.DeviceBundleVersion}
}

// searchResponse is one page of the tracker's paginated issue search.
type searchResponse struct {
	StartAt    int           `json:"startAt"`
	MaxResults int           `json:"maxResults"`
	Total      int           `json:"total"`
	Issues     []issueResult `json:"issues"`
}

// issueResult is a single issue as returned by the search endpoint. Custom
// field values arrive untyped because their IDs are configuration.
type issueResult struct {
	ID     string         `json:"id"`
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// updateRequest is the partial-update body: only the fields being written.
type updateRequest struct {
	Fields map[string]string `json:"fields"`
}

// permissionsResponse is the tracker's answer to a permission probe.
type permissionsResponse struct {
	Permissions map[string]struct {
		HavePermission bool `json:"havePermission"`
	} `json:"permissions"`
}

// fieldDescriptor is one entry of the tracker's field catalog.
type fieldDescriptor struct {
	ID string `json:"id"`
}
