package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetsync/vinsync-agent/internal/models"
)

// vehicleResponse is the provider's wire format for a single vehicle lookup.
type vehicleResponse struct {
	TimestampMs int64  `json:"timestamp"`
	Position    *struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lon"`
	} `json:"position"`
	EngineHours *float64 `json:"engineHours"`
	Archived    *bool    `json:"archived"`
	CeqID       string   `json:"ceqId"`
	CompanyName string   `json:"companyName"`
	Devices     *struct {
		TDAC                string `json:"tdac"`
		DeviceBundleVersion string `json:"deviceBundleVersion"`
	} `json:"devices"`
}

// HTTPSource fetches telemetry for a VIN from one data plane of the fleet
// telemetry provider over its REST API. A single attempt is made per call;
// retry policy belongs to the caller.
type HTTPSource struct {
	baseURL    string
	token      string
	label      models.SourceLabel
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPSource creates a telemetry source for one data plane.
func NewHTTPSource(baseURL, token string, label models.SourceLabel, timeout time.Duration, logger zerolog.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		token:   token,
		label:   label,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Label returns which data plane this source reads from.
func (s *HTTPSource) Label() models.SourceLabel {
	return s.label
}

// Fetch looks up the telemetry record for a VIN. A provider 404 is not an
// error: it returns (nil, nil) to signal absence for this plane.
func (s *HTTPSource) Fetch(ctx context.Context, vin string) (*models.TelemetryRecord, error) {
	endpoint := fmt.Sprintf("%s/v1/vehicles/%s/telemetry", s.baseURL, url.PathEscape(vin))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telemetry request to %s plane failed: %w", s.label, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		s.logger.Debug().
			Str("vin", vin).
			Str("source", string(s.label)).
			Msg("No telemetry record for VIN")
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("telemetry lookup for %s returned status %d", vin, resp.StatusCode)
	}

	var body vehicleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode telemetry response: %w", err)
	}

	return body.toRecord(), nil
}

// toRecord converts the provider wire format into the internal record.
func (v *vehicleResponse) toRecord() *models.TelemetryRecord {
	record := &models.TelemetryRecord{
		Timestamp:   time.UnixMilli(v.TimestampMs).UTC(),
		EngineHours: v.EngineHours,
		Archived:    v.Archived,
		CeqID:       v.CeqID,
		CompanyName: v.CompanyName,
	}

	if v.Position != nil {
		record.Position = &models.Position{
			Latitude:  v.Position.Latitude,
			Longitude: v.Position.Longitude,
		}
	}

	if v.Devices != nil {
		record.Devices = &models.Devices{
			TDAC:                v.Devices.TDAC,
			DeviceBundleVersion: v.Devices.DeviceBundleVersion,
		}
	}

	return record
}
