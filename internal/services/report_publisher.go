package services

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fleetsync/vinsync-agent/internal/models"
	"github.com/fleetsync/vinsync-agent/pkg/mqtt"
)

// ReportPublisher pushes a finished sync report to interested consumers.
type ReportPublisher interface {
	PublishReport(report *models.SyncReport) error
}

// MQTTReportPublisher publishes sync reports as JSON to an MQTT topic on the
// fleet operations bus.
type MQTTReportPublisher struct {
	topic      string
	qos        int
	mqttClient mqtt.MQTTClient
	logger     zerolog.Logger
}

// NewMQTTReportPublisher creates a report publisher on an initialized MQTT
// connection.
func NewMQTTReportPublisher(topic string, qos int, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *MQTTReportPublisher {
	return &MQTTReportPublisher{
		topic:      topic,
		qos:        qos,
		mqttClient: mqttClient,
		logger:     logger,
	}
}

// PublishReport serializes the report and publishes it with a blocking wait
// on the broker acknowledgement.
func (p *MQTTReportPublisher) PublishReport(report *models.SyncReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize sync report: %w", err)
	}

	token := p.mqttClient.Publish(p.topic, byte(p.qos), false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish sync report: %w", err)
	}

	p.logger.Debug().
		Str("run_id", report.RunID).
		Str("topic", p.topic).
		Msg("Sync report published")
	return nil
}
