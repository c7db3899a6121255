package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetsync/vinsync-agent/internal/constants"
	"github.com/fleetsync/vinsync-agent/internal/models"
	"github.com/fleetsync/vinsync-agent/internal/utils"
)

// IssueSource yields the tracked issues to synchronize, fully materialized.
type IssueSource interface {
	SearchIssues(ctx context.Context) ([]models.TrackedIssue, error)
}

// UpdateSink applies one partial update to a tracker issue.
type UpdateSink interface {
	ApplyUpdate(ctx context.Context, issueID string, payload models.UpdatePayload) error
}

// CapabilityChecker probes the tracker once, before any per-VIN work, for
// valid credentials, edit permission, and the configured custom fields.
type CapabilityChecker interface {
	Preflight(ctx context.Context) error
}

// Client talks to a Jira-style issue tracker over its REST v2 API. It
// implements IssueSource, UpdateSink, and CapabilityChecker.
type Client struct {
	baseURL    string
	token      string
	jql        string
	pageSize   int
	fields     FieldIDs
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a tracker client. pageSize bounds each search page.
func NewClient(baseURL, token, jql string, pageSize int, fields FieldIDs, timeout time.Duration, logger zerolog.Logger) *Client {
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	return &Client{
		baseURL:  baseURL,
		token:    token,
		jql:      jql,
		pageSize: pageSize,
		fields:   fields,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SearchIssues runs the configured JQL query and folds all result pages
// into a single immutable slice.
func (c *Client) SearchIssues(ctx context.Context) ([]models.TrackedIssue, error) {
	var issues []models.TrackedIssue

	for start := 0; ; {
		page, err := c.searchPage(ctx, start)
		if err != nil {
			return nil, err
		}

		issues = foldPage(issues, page, c.fields)

		start += len(page.Issues)
		// A short page is the end of the results even when the reported
		// total disagrees; trusting total alone could page forever against
		// a misbehaving tracker.
		if len(page.Issues) < c.pageSize || start >= page.Total {
			break
		}
	}

	c.logger.Info().
		Int("issues", len(issues)).
		Str("jql", c.jql).
		Msg("Issue search complete")
	return issues, nil
}

// foldPage reduces one search page into the accumulated issue list. It is a
// pure function of its inputs; pagination state never leaks past the fold.
func foldPage(acc []models.TrackedIssue, page *searchResponse, fields FieldIDs) []models.TrackedIssue {
	out := make([]models.TrackedIssue, len(acc), len(acc)+len(page.Issues))
	copy(out, acc)

	for _, raw := range page.Issues {
		out = append(out, models.TrackedIssue{
			ID:                    raw.ID,
			Key:                   raw.Key,
			VIN:                   stringField(raw.Fields, fields.VIN),
			CompanyNameAlreadySet: stringField(raw.Fields, fields.CompanyName) != "",
		})
	}
	return out
}

// stringField reads an untyped custom field value, tolerating null and
// non-string payloads.
func stringField(fields map[string]any, id string) string {
	value, ok := fields[id].(string)
	if !ok {
		return ""
	}
	return value
}

func (c *Client) searchPage(ctx context.Context, startAt int) (*searchResponse, error) {
	query := url.Values{}
	query.Set("jql", c.jql)
	query.Set("startAt", strconv.Itoa(startAt))
	query.Set("maxResults", strconv.Itoa(c.pageSize))
	query.Set("fields", c.fields.VIN+","+c.fields.CompanyName)

	endpoint := c.baseURL + "/rest/api/2/search?" + query.Encode()

	var page searchResponse
	if err := c.getJSON(ctx, endpoint, &page); err != nil {
		return nil, fmt.Errorf("issue search at offset %d failed: %w", startAt, err)
	}
	return &page, nil
}

// ApplyUpdate performs a partial update of one issue, writing only the
// fields carried by the payload. No transactionality is assumed.
func (c *Client) ApplyUpdate(ctx context.Context, issueID string, payload models.UpdatePayload) error {
	body := updateRequest{Fields: make(map[string]string, len(payload))}
	translation := map[string]string{
		models.FieldCeqID:               c.fields.CeqID,
		models.FieldCompanyName:         c.fields.CompanyName,
		models.FieldTDAC:                c.fields.TDAC,
		models.FieldDeviceBundleVersion: c.fields.DeviceBundleVersion,
	}
	for name, value := range payload {
		fieldID, ok := translation[name]
		if !ok {
			return fmt.Errorf("no tracker field configured for %q", name)
		}
		body.Fields[fieldID] = value
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal update for issue %s: %w", issueID, err)
	}

	endpoint := c.baseURL + "/rest/api/2/issue/" + url.PathEscape(issueID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update of issue %s failed: %w", issueID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update of issue %s rejected with status %d", issueID, resp.StatusCode)
	}

	c.logger.Debug().
		Str("issue_id", issueID).
		Int("fields", len(payload)).
		Msg("Issue updated")
	return nil
}

// Preflight verifies credentials, edit permission, and the presence of all
// configured custom fields. It runs once per sync run, before the loop.
func (c *Client) Preflight(ctx context.Context) error {
	var me struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/rest/api/2/myself", &me); err != nil {
		return fmt.Errorf("tracker authentication check failed: %w", err)
	}

	var perms permissionsResponse
	permURL := c.baseURL + "/rest/api/2/mypermissions?permissions=EDIT_ISSUES"
	if err := c.getJSON(ctx, permURL, &perms); err != nil {
		return fmt.Errorf("tracker permission check failed: %w", err)
	}
	if !perms.Permissions["EDIT_ISSUES"].HavePermission {
		return fmt.Errorf("tracker user %q lacks EDIT_ISSUES permission", me.Name)
	}

	var catalog []fieldDescriptor
	if err := c.getJSON(ctx, c.baseURL+"/rest/api/2/field", &catalog); err != nil {
		return fmt.Errorf("tracker field check failed: %w", err)
	}
	known := make([]string, 0, len(catalog))
	for _, f := range catalog {
		known = append(known, f.ID)
	}
	knownSet := utils.SliceToSet(known)
	for _, id := range c.fields.All() {
		if _, ok := knownSet[id]; !ok {
			return fmt.Errorf("tracker has no field %q", id)
		}
	}

	c.logger.Info().Str("user", me.Name).Msg("Tracker preflight checks passed")
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
