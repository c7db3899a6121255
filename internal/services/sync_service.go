package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"

	"github.com/fleetsync/vinsync-agent/internal/constants"
	"github.com/fleetsync/vinsync-agent/internal/models"
	"github.com/fleetsync/vinsync-agent/internal/utils"
	"github.com/fleetsync/vinsync-agent/pkg/telemetry"
	"github.com/fleetsync/vinsync-agent/pkg/tracker"
)

// SyncService drives one full sync run: fetch telemetry for every tracked
// issue, reconcile the two planes, map the authoritative record and apply a
// partial update where the gate allows it. Issues are processed by a bounded
// worker pool; iterations share nothing but read-only clients.
type SyncService struct {
	issueSource tracker.IssueSource
	updateSink  tracker.UpdateSink
	preflight   tracker.CapabilityChecker
	primary     telemetry.Source
	secondary   telemetry.Source
	publisher   ReportPublisher

	workers       int
	fetchTimeout  time.Duration
	updateTimeout time.Duration
	logger        zerolog.Logger
}

// NewSyncService wires a sync driver. preflight and publisher may be nil to
// disable the capability check and report publishing respectively.
func NewSyncService(issueSource tracker.IssueSource, updateSink tracker.UpdateSink, preflight tracker.CapabilityChecker,
	primary, secondary telemetry.Source, publisher ReportPublisher, workers int,
	fetchTimeout, updateTimeout time.Duration, logger zerolog.Logger) *SyncService {

	if workers <= 0 {
		workers = constants.DefaultWorkers
	}
	if fetchTimeout <= 0 {
		fetchTimeout = constants.DefaultFetchTimeout
	}
	if updateTimeout <= 0 {
		updateTimeout = constants.DefaultUpdateTimeout
	}

	return &SyncService{
		issueSource:   issueSource,
		updateSink:    updateSink,
		preflight:     preflight,
		primary:       primary,
		secondary:     secondary,
		publisher:     publisher,
		workers:       workers,
		fetchTimeout:  fetchTimeout,
		updateTimeout: updateTimeout,
		logger:        logger,
	}
}

// Run executes one sync pass over all tracked issues and returns the report.
// Per-VIN failures are recorded and never abort the run; only preflight and
// the initial issue search are fatal. Cancelling ctx stops new VINs from
// being issued while in-flight iterations drain normally.
func (s *SyncService) Run(ctx context.Context) (*models.SyncReport, error) {
	startedAt := time.Now().UTC()
	runID := uuid.New().String()

	if s.preflight != nil {
		if err := s.preflight.Preflight(ctx); err != nil {
			return nil, err
		}
	}

	issues, err := s.issueSource.SearchIssues(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("run_id", runID).
		Int("issues", len(issues)).
		Int("workers", s.workers).
		Msg("Starting sync run")

	results := cmap.New[models.IssueResult]()
	pool := utils.NewWorkerPool(s.workers)

	for _, issue := range issues {
		if ctx.Err() != nil {
			s.logger.Warn().Str("run_id", runID).Msg("Sync run cancelled, draining in-flight work")
			break
		}

		issue := issue
		pool.Submit(func() {
			results.Set(issue.Key, s.syncIssue(ctx, issue))
		})
	}

	pool.Shutdown()

	report := buildReport(runID, startedAt, issues, results)
	s.logger.Info().
		Str("run_id", runID).
		Int("no_data", report.NoData).
		Int("skipped", report.Skipped).
		Int("updated", report.Updated).
		Int("update_failed", report.UpdateFailed).
		Msg("Sync run finished")

	if s.publisher != nil {
		if err := s.publisher.PublishReport(report); err != nil {
			s.logger.Error().Err(err).Str("run_id", runID).Msg("Failed to publish sync report")
		}
	}

	return report, nil
}

// syncIssue performs the fetch, reconcile, map, gate, apply sequence for one
// tracked issue and returns its outcome.
func (s *SyncService) syncIssue(ctx context.Context, issue models.TrackedIssue) models.IssueResult {
	result := models.IssueResult{
		IssueID:  issue.ID,
		IssueKey: issue.Key,
		VIN:      issue.VIN,
	}

	primaryRec, secondaryRec := s.fetchBoth(ctx, issue.VIN)

	record, label := Reconcile(primaryRec, secondaryRec)
	if record == nil {
		s.logger.Info().
			Str("issue_key", issue.Key).
			Str("vin", issue.VIN).
			Msg("No telemetry data in either plane")
		result.Outcome = constants.OutcomeNoData
		return result
	}
	result.Source = label

	payload := MapFields(record)
	if !ShouldUpdate(issue, payload) {
		s.logger.Debug().
			Str("issue_key", issue.Key).
			Str("vin", issue.VIN).
			Bool("already_enriched", issue.CompanyNameAlreadySet).
			Int("fields", len(payload)).
			Msg("Skipping issue update")
		result.Outcome = constants.OutcomeSkipped
		return result
	}

	updateCtx, cancel := context.WithTimeout(ctx, s.updateTimeout)
	defer cancel()

	if err := s.updateSink.ApplyUpdate(updateCtx, issue.ID, payload); err != nil {
		s.logger.Error().
			Err(err).
			Str("issue_key", issue.Key).
			Str("vin", issue.VIN).
			Msg("Issue update rejected")
		result.Outcome = constants.OutcomeUpdateFailed
		return result
	}

	s.logger.Info().
		Str("issue_key", issue.Key).
		Str("vin", issue.VIN).
		Str("source", string(label)).
		Int("fields", len(payload)).
		Msg("Issue updated")
	result.Outcome = constants.OutcomeUpdated
	return result
}

// fetchBoth queries the two telemetry planes concurrently. A failed or
// timed-out fetch degrades to absence for that plane only.
func (s *SyncService) fetchBoth(ctx context.Context, vin string) (*models.TelemetryRecord, *models.TelemetryRecord) {
	var wg sync.WaitGroup
	var primaryRec, secondaryRec *models.TelemetryRecord

	wg.Add(2)
	go func() {
		defer wg.Done()
		primaryRec = s.fetchOne(ctx, s.primary, vin)
	}()
	go func() {
		defer wg.Done()
		secondaryRec = s.fetchOne(ctx, s.secondary, vin)
	}()
	wg.Wait()

	return primaryRec, secondaryRec
}

func (s *SyncService) fetchOne(ctx context.Context, source telemetry.Source, vin string) *models.TelemetryRecord {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	record, err := source.Fetch(fetchCtx, vin)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("vin", vin).
			Str("source", string(source.Label())).
			Msg("Telemetry source unavailable, treating as absent")
		return nil
	}
	return record
}

// buildReport folds per-issue results into a single immutable report,
// preserving the search order of the issues. Issues never submitted to the
// pool (run cancelled) have no entry and are left out of the report.
func buildReport(runID string, startedAt time.Time, issues []models.TrackedIssue, results cmap.ConcurrentMap[string, models.IssueResult]) *models.SyncReport {
	report := &models.SyncReport{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		Results:    make([]models.IssueResult, 0, results.Count()),
	}

	for _, issue := range issues {
		result, ok := results.Get(issue.Key)
		if !ok {
			continue
		}
		report.Results = append(report.Results, result)

		switch result.Outcome {
		case constants.OutcomeNoData:
			report.NoData++
		case constants.OutcomeSkipped:
			report.Skipped++
		case constants.OutcomeUpdated:
			report.Updated++
		case constants.OutcomeUpdateFailed:
			report.UpdateFailed++
		}
	}

	return report
}
