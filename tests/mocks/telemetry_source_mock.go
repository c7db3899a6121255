package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fleetsync/vinsync-agent/internal/models"
)

// TelemetrySource is a mock implementation of the telemetry.Source interface
type TelemetrySource struct {
	mock.Mock
	SourceLabel models.SourceLabel
}

func (m *TelemetrySource) Fetch(ctx context.Context, vin string) (*models.TelemetryRecord, error) {
	args := m.Called(ctx, vin)
	record, _ := args.Get(0).(*models.TelemetryRecord)
	return record, args.Error(1)
}

func (m *TelemetrySource) Label() models.SourceLabel {
	return m.SourceLabel
}
