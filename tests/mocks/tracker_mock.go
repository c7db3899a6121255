package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fleetsync/vinsync-agent/internal/models"
)

// IssueSource is a mock implementation of the tracker.IssueSource interface
type IssueSource struct {
	mock.Mock
}

func (m *IssueSource) SearchIssues(ctx context.Context) ([]models.TrackedIssue, error) {
	args := m.Called(ctx)
	issues, _ := args.Get(0).([]models.TrackedIssue)
	return issues, args.Error(1)
}

// UpdateSink is a mock implementation of the tracker.UpdateSink interface
type UpdateSink struct {
	mock.Mock
}

func (m *UpdateSink) ApplyUpdate(ctx context.Context, issueID string, payload models.UpdatePayload) error {
	args := m.Called(ctx, issueID, payload)
	return args.Error(0)
}

// CapabilityChecker is a mock implementation of the tracker.CapabilityChecker interface
type CapabilityChecker struct {
	mock.Mock
}

func (m *CapabilityChecker) Preflight(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ReportPublisher is a mock implementation of the services.ReportPublisher interface
type ReportPublisher struct {
	mock.Mock
}

func (m *ReportPublisher) PublishReport(report *models.SyncReport) error {
	args := m.Called(report)
	return args.Error(0)
}
