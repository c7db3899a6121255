package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/fleetsync/vinsync-agent/pkg/file"
)

// TelemetryPlaneConfig describes one data plane of the telemetry provider.
// The API token is read from the named environment variable, never from the
// config file itself.
type TelemetryPlaneConfig struct {
	BaseURL  string `yaml:"base_url"`  // Provider REST endpoint for this plane
	TokenEnv string `yaml:"token_env"` // Env var holding the plane's API token
}

// Token resolves the plane's API token from the environment.
func (p TelemetryPlaneConfig) Token() string {
	return os.Getenv(p.TokenEnv)
}

// Config represents the structure of the configuration file.
type Config struct {
	Log struct {
		Level      string `yaml:"level"`       // zerolog level (debug, info, warn, error)
		File       string `yaml:"file"`        // Optional log file path; empty logs to stdout only
		MaxSizeMB  int    `yaml:"max_size_mb"` // Log file size before rotation
		MaxBackups int    `yaml:"max_backups"` // Rotated files to keep
	} `yaml:"log"`

	Tracker struct {
		BaseURL  string        `yaml:"base_url"`  // Issue tracker REST endpoint
		TokenEnv string        `yaml:"token_env"` // Env var holding the tracker API token
		JQL      string        `yaml:"jql"`       // Query selecting the issues to sync
		PageSize int           `yaml:"page_size"` // Search page size
		Timeout  time.Duration `yaml:"timeout"`   // HTTP timeout per tracker call

		Fields struct {
			VIN                 string `yaml:"vin"`
			CeqID               string `yaml:"ceq_id"`
			CompanyName         string `yaml:"company_name"`
			TDAC                string `yaml:"tdac"`
			DeviceBundleVersion string `yaml:"device_bundle_version"`
		} `yaml:"fields"` // Custom field IDs on the tracker
	} `yaml:"tracker"`

	Telemetry struct {
		Primary      TelemetryPlaneConfig `yaml:"primary"`
		Secondary    TelemetryPlaneConfig `yaml:"secondary"`
		FetchTimeout time.Duration        `yaml:"fetch_timeout"` // Timeout per telemetry lookup
	} `yaml:"telemetry"`

	Sync struct {
		Workers       int           `yaml:"workers"`        // Bounded worker pool size across issues
		UpdateTimeout time.Duration `yaml:"update_timeout"` // Timeout per tracker update call
		Preflight     bool          `yaml:"preflight"`      // Run tracker capability checks before the loop
		ReportFile    string        `yaml:"report_file"`    // Optional path to dump the run report as JSON
	} `yaml:"sync"`

	MQTT struct {
		Enabled       bool   `yaml:"enabled"`        // Publish sync reports to the fleet ops bus
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID
		Topic         string `yaml:"topic"`          // Topic for sync reports
		QOS           int    `yaml:"qos"`            // MQTT QoS level for report messages
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate
	} `yaml:"mqtt"`
}

// TrackerToken resolves the tracker API token from the environment.
func (c *Config) TrackerToken() string {
	return os.Getenv(c.Tracker.TokenEnv)
}

// LoadConfig loads the YAML configuration from the specified file.
// It returns a pointer to the Config struct and an error if loading fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	err := fileClient.ReadYamlFile(filename, &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that every endpoint and credential needed for a run is
// present. An error here is fatal: the run must not start partially
// configured.
func (c *Config) Validate() error {
	if c.Tracker.BaseURL == "" {
		return fmt.Errorf("tracker.base_url is required")
	}
	if c.TrackerToken() == "" {
		return fmt.Errorf("tracker token env var %q is unset or empty", c.Tracker.TokenEnv)
	}
	if c.Tracker.JQL == "" {
		return fmt.Errorf("tracker.jql is required")
	}

	fields := map[string]string{
		"tracker.fields.vin":                   c.Tracker.Fields.VIN,
		"tracker.fields.ceq_id":                c.Tracker.Fields.CeqID,
		"tracker.fields.company_name":          c.Tracker.Fields.CompanyName,
		"tracker.fields.tdac":                  c.Tracker.Fields.TDAC,
		"tracker.fields.device_bundle_version": c.Tracker.Fields.DeviceBundleVersion,
	}
	for name, value := range fields {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	planes := []struct {
		name string
		cfg  TelemetryPlaneConfig
	}{
		{"telemetry.primary", c.Telemetry.Primary},
		{"telemetry.secondary", c.Telemetry.Secondary},
	}
	for _, plane := range planes {
		if plane.cfg.BaseURL == "" {
			return fmt.Errorf("%s.base_url is required", plane.name)
		}
		if plane.cfg.Token() == "" {
			return fmt.Errorf("%s token env var %q is unset or empty", plane.name, plane.cfg.TokenEnv)
		}
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
		if c.MQTT.Topic == "" {
			return fmt.Errorf("mqtt.topic is required when mqtt is enabled")
		}
	}

	return nil
}
