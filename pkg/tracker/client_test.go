package tracker_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsync/vinsync-agent/internal/models"
	"github.com/fleetsync/vinsync-agent/pkg/tracker"
)

var testFields = tracker.FieldIDs{
	VIN:                 "customfield_10401",
	CeqID:               "customfield_10402",
	CompanyName:         "customfield_10403",
	TDAC:                "customfield_10404",
	DeviceBundleVersion: "customfield_10405",
}

func newTestClient(serverURL string) *tracker.Client {
	return tracker.NewClient(serverURL, "secret", "project = FLEET", 2, testFields, time.Second, zerolog.Nop())
}

// TestClient_SearchIssues_Pagination verifies that all pages fold into one
// result list and custom fields map onto the issue snapshot.
func TestClient_SearchIssues_Pagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/api/2/search", r.URL.Path)
		assert.Equal(t, "project = FLEET", r.URL.Query().Get("jql"))

		switch r.URL.Query().Get("startAt") {
		case "0":
			fmt.Fprint(w, `{"startAt": 0, "maxResults": 2, "total": 3, "issues": [
				{"id": "10001", "key": "FLEET-1", "fields": {"customfield_10401": "VIN0001", "customfield_10403": null}},
				{"id": "10002", "key": "FLEET-2", "fields": {"customfield_10401": "VIN0002", "customfield_10403": "Acme Logistics"}}
			]}`)
		case "2":
			fmt.Fprint(w, `{"startAt": 2, "maxResults": 2, "total": 3, "issues": [
				{"id": "10003", "key": "FLEET-3", "fields": {"customfield_10401": "VIN0003"}}
			]}`)
		default:
			t.Errorf("unexpected startAt %q", r.URL.Query().Get("startAt"))
		}
	}))
	defer server.Close()

	issues, err := newTestClient(server.URL).SearchIssues(context.Background())

	require.NoError(t, err)
	require.Len(t, issues, 3)
	assert.Equal(t, models.TrackedIssue{ID: "10001", Key: "FLEET-1", VIN: "VIN0001"}, issues[0])
	assert.True(t, issues[1].CompanyNameAlreadySet)
	assert.False(t, issues[2].CompanyNameAlreadySet)
}

// TestClient_SearchIssues_Empty verifies that an empty result set folds to
// an empty list without error.
func TestClient_SearchIssues_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"startAt": 0, "maxResults": 2, "total": 0, "issues": []}`)
	}))
	defer server.Close()

	issues, err := newTestClient(server.URL).SearchIssues(context.Background())

	require.NoError(t, err)
	assert.Empty(t, issues)
}

// TestClient_SearchIssues_ShortPageStops verifies that a page shorter than
// the page size ends the search even when the server reports a larger total.
func TestClient_SearchIssues_ShortPageStops(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("startAt") != "0" {
			t.Errorf("unexpected follow-up request at startAt %q", r.URL.Query().Get("startAt"))
		}
		fmt.Fprint(w, `{"startAt": 0, "maxResults": 2, "total": 10, "issues": [
			{"id": "10001", "key": "FLEET-1", "fields": {"customfield_10401": "VIN0001"}}
		]}`)
	}))
	defer server.Close()

	issues, err := newTestClient(server.URL).SearchIssues(context.Background())

	require.NoError(t, err)
	assert.Len(t, issues, 1)
	assert.Equal(t, 1, requests)
}

// TestClient_ApplyUpdate verifies that logical payload names translate to
// the configured custom field IDs and only mapped fields are written.
func TestClient_ApplyUpdate(t *testing.T) {
	var captured map[string]map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/rest/api/2/issue/10001", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	payload := models.UpdatePayload{
		models.FieldCompanyName: "Acme Logistics",
		models.FieldTDAC:        "TDAC-9",
	}
	err := newTestClient(server.URL).ApplyUpdate(context.Background(), "10001", payload)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"customfield_10403": "Acme Logistics",
		"customfield_10404": "TDAC-9",
	}, captured["fields"])
}

// TestClient_ApplyUpdate_Rejected verifies that a non-2xx answer surfaces as
// an error.
func TestClient_ApplyUpdate_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	payload := models.UpdatePayload{models.FieldTDAC: "TDAC-9"}
	err := newTestClient(server.URL).ApplyUpdate(context.Background(), "10001", payload)

	assert.Error(t, err)
}

func preflightHandler(havePermission bool, fieldIDs []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/api/2/myself":
			fmt.Fprint(w, `{"name": "sync-bot"}`)
		case "/rest/api/2/mypermissions":
			fmt.Fprintf(w, `{"permissions": {"EDIT_ISSUES": {"havePermission": %t}}}`, havePermission)
		case "/rest/api/2/field":
			descriptors := make([]map[string]string, 0, len(fieldIDs))
			for _, id := range fieldIDs {
				descriptors = append(descriptors, map[string]string{"id": id})
			}
			_ = json.NewEncoder(w).Encode(descriptors)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

// TestClient_Preflight_Success verifies the full capability probe passes
// when auth, permission, and all configured fields check out.
func TestClient_Preflight_Success(t *testing.T) {
	server := httptest.NewServer(preflightHandler(true, testFields.All()))
	defer server.Close()

	err := newTestClient(server.URL).Preflight(context.Background())

	assert.NoError(t, err)
}

// TestClient_Preflight_MissingPermission verifies the probe fails when the
// user cannot edit issues.
func TestClient_Preflight_MissingPermission(t *testing.T) {
	server := httptest.NewServer(preflightHandler(false, testFields.All()))
	defer server.Close()

	err := newTestClient(server.URL).Preflight(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "EDIT_ISSUES")
}

// TestClient_Preflight_MissingField verifies the probe fails when a
// configured custom field does not exist on the tracker.
func TestClient_Preflight_MissingField(t *testing.T) {
	server := httptest.NewServer(preflightHandler(true, []string{"customfield_10401"}))
	defer server.Close()

	err := newTestClient(server.URL).Preflight(context.Background())

	assert.Error(t, err)
}
