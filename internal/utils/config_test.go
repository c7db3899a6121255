package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsync/vinsync-agent/internal/utils"
	"github.com/fleetsync/vinsync-agent/pkg/file"
)

const validConfig = `
log:
  level: debug
tracker:
  base_url: https://tracker.example.com
  token_env: TEST_TRACKER_TOKEN
  jql: project = FLEET
  page_size: 50
  timeout: 30s
  fields:
    vin: customfield_10401
    ceq_id: customfield_10402
    company_name: customfield_10403
    tdac: customfield_10404
    device_bundle_version: customfield_10405
telemetry:
  primary:
    base_url: https://telemetry.example.com
    token_env: TEST_PRIMARY_TOKEN
  secondary:
    base_url: https://telemetry-staging.example.com
    token_env: TEST_SECONDARY_TOKEN
  fetch_timeout: 10s
sync:
  workers: 4
  update_timeout: 15s
  preflight: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func setTokens(t *testing.T) {
	t.Helper()
	t.Setenv("TEST_TRACKER_TOKEN", "tracker-secret")
	t.Setenv("TEST_PRIMARY_TOKEN", "primary-secret")
	t.Setenv("TEST_SECONDARY_TOKEN", "secondary-secret")
}

// TestLoadConfig_Valid verifies parsing and validation of a complete file.
func TestLoadConfig_Valid(t *testing.T) {
	setTokens(t)
	path := writeConfig(t, validConfig)

	config, err := utils.LoadConfig(path, file.NewFileService())

	require.NoError(t, err)
	require.NoError(t, config.Validate())
	assert.Equal(t, "https://tracker.example.com", config.Tracker.BaseURL)
	assert.Equal(t, "customfield_10401", config.Tracker.Fields.VIN)
	assert.Equal(t, "tracker-secret", config.TrackerToken())
	assert.Equal(t, "primary-secret", config.Telemetry.Primary.Token())
	assert.Equal(t, 4, config.Sync.Workers)
	assert.True(t, config.Sync.Preflight)
}

// TestLoadConfig_MissingFile verifies that a missing config file errors.
func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := utils.LoadConfig("does-not-exist.yaml", file.NewFileService())

	assert.Error(t, err)
}

// TestConfig_Validate_MissingToken verifies that an unset token env var is
// rejected before any processing starts.
func TestConfig_Validate_MissingToken(t *testing.T) {
	setTokens(t)
	t.Setenv("TEST_SECONDARY_TOKEN", "")
	path := writeConfig(t, validConfig)

	config, err := utils.LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	err = config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_SECONDARY_TOKEN")
}

// TestConfig_Validate_MissingField verifies that an unmapped custom field is
// rejected.
func TestConfig_Validate_MissingField(t *testing.T) {
	setTokens(t)
	broken := validConfig
	path := writeConfig(t, broken)

	config, err := utils.LoadConfig(path, file.NewFileService())
	require.NoError(t, err)
	config.Tracker.Fields.TDAC = ""

	err = config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tdac")
}

// TestConfig_Validate_MQTTRequiresBroker verifies the MQTT section is
// validated only when enabled.
func TestConfig_Validate_MQTTRequiresBroker(t *testing.T) {
	setTokens(t)
	path := writeConfig(t, validConfig)

	config, err := utils.LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	config.MQTT.Enabled = true
	err = config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mqtt.broker")

	config.MQTT.Enabled = false
	assert.NoError(t, config.Validate())
}
