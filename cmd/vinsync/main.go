package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/fleetsync/vinsync-agent/internal/models"
	"github.com/fleetsync/vinsync-agent/internal/services"
	"github.com/fleetsync/vinsync-agent/internal/utils"
	"github.com/fleetsync/vinsync-agent/pkg/file"
	"github.com/fleetsync/vinsync-agent/pkg/mqtt"
	"github.com/fleetsync/vinsync-agent/pkg/telemetry"
	"github.com/fleetsync/vinsync-agent/pkg/tracker"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	// Secrets come from the environment; a local .env is optional.
	_ = godotenv.Load()

	fileClient := file.NewFileService()

	config, err := utils.LoadConfig(*configPath, fileClient)
	if err != nil {
		logger := bootstrapLogger()
		logger.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}

	logger := newLogger(config)

	if err := config.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	trackerClient := tracker.NewClient(
		config.Tracker.BaseURL,
		config.TrackerToken(),
		config.Tracker.JQL,
		config.Tracker.PageSize,
		tracker.FieldIDs{
			VIN:                 config.Tracker.Fields.VIN,
			CeqID:               config.Tracker.Fields.CeqID,
			CompanyName:         config.Tracker.Fields.CompanyName,
			TDAC:                config.Tracker.Fields.TDAC,
			DeviceBundleVersion: config.Tracker.Fields.DeviceBundleVersion,
		},
		config.Tracker.Timeout,
		logger,
	)

	primarySource := telemetry.NewHTTPSource(
		config.Telemetry.Primary.BaseURL,
		config.Telemetry.Primary.Token(),
		models.SourcePrimary,
		config.Telemetry.FetchTimeout,
		logger,
	)
	secondarySource := telemetry.NewHTTPSource(
		config.Telemetry.Secondary.BaseURL,
		config.Telemetry.Secondary.Token(),
		models.SourceSecondary,
		config.Telemetry.FetchTimeout,
		logger,
	)

	var publisher services.ReportPublisher
	var mqttClient *mqtt.MqttService
	if config.MQTT.Enabled {
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		logger.Info().Str("client_id", clientID).Msg("Connecting to MQTT broker")

		mqttClient = mqtt.NewMqttService(fileClient)
		if err := mqttClient.Initialize(config.MQTT.Broker, clientID, config.MQTT.CACertificate); err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
		}
		publisher = services.NewMQTTReportPublisher(config.MQTT.Topic, config.MQTT.QOS, mqttClient, logger)
	}

	var preflight tracker.CapabilityChecker
	if config.Sync.Preflight {
		preflight = trackerClient
	}

	syncService := services.NewSyncService(
		trackerClient,
		trackerClient,
		preflight,
		primarySource,
		secondarySource,
		publisher,
		config.Sync.Workers,
		config.Telemetry.FetchTimeout,
		config.Sync.UpdateTimeout,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := syncService.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Sync run failed")
	}

	if config.Sync.ReportFile != "" {
		if err := fileClient.WriteJsonFile(config.Sync.ReportFile, report); err != nil {
			logger.Error().Err(err).Str("path", config.Sync.ReportFile).Msg("Failed to write report file")
		}
	}

	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}

	logger.Info().
		Str("run_id", report.RunID).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Int("no_data", report.NoData).
		Int("update_failed", report.UpdateFailed).
		Msg("Done")
}

// bootstrapLogger is used before the configuration is readable.
func bootstrapLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newLogger builds the run logger from config: JSON to stdout, optionally
// duplicated into a size-rotated file.
func newLogger(config *utils.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(config.Log.Level)
	if err != nil || config.Log.Level == "" {
		level = zerolog.InfoLevel
	}

	var writer io.Writer = os.Stdout
	if config.Log.File != "" {
		writer = zerolog.MultiLevelWriter(os.Stdout, &lumberjack.Logger{
			Filename:   config.Log.File,
			MaxSize:    config.Log.MaxSizeMB,
			MaxBackups: config.Log.MaxBackups,
		})
	}

	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
