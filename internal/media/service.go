package media

import (
	"context"
	"fmt"
	"time"

	"extmedia/internal/events"
	"extmedia/internal/logger"
	"extmedia/internal/metrics"

	"github.com/google/uuid"
)

// Guard is the site-wide busy marker held for the duration of a run.
type Guard interface {
	Acquire() (release func() error, err error)
}

// ImportService runs one reconciliation under the maintenance marker and reports its outcome.
type ImportService struct {
	reconciler *Reconciler
	guard      Guard
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

func NewImportService(reconciler *Reconciler, guard Guard, publisher events.Publisher, m *metrics.Metrics, logger *logger.Logger) *ImportService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ImportService{
		reconciler: reconciler,
		guard:      guard,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
	}
}

// Import runs the snapshot. Every failure, including a panic inside the run, comes back as a
// *FatalRunError and the marker is released on every path.
func (s *ImportService) Import(ctx context.Context, source string, items []ExternalItem) (result *SyncResult, err error) {
	runID := uuid.New().String()
	started := time.Now()

	release, err := s.guard.Acquire()
	if err != nil {
		s.finish(ctx, runID, source, started, nil, err)
		return nil, &FatalRunError{Err: err}
	}
	s.metrics.SetMaintenance(true)
	defer func() {
		if err := release(); err != nil {
			s.logger.Error("Failed to release maintenance marker after run %s: %v", runID, err)
		}
		s.metrics.SetMaintenance(false)
	}()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &FatalRunError{Err: fmt.Errorf("import panicked: %v", r)}
			s.finish(ctx, runID, source, started, nil, err)
		}
	}()

	s.logger.Info("Starting media import %s from %s with %d items", runID, source, len(items))

	result, err = s.reconciler.Reconcile(ctx, items)
	if err != nil {
		err = &FatalRunError{Err: err}
		s.finish(ctx, runID, source, started, nil, err)
		return nil, err
	}

	s.finish(ctx, runID, source, started, result, nil)
	return result, nil
}

func (s *ImportService) finish(ctx context.Context, runID, source string, started time.Time, result *SyncResult, runErr error) {
	finished := time.Now()
	event := events.SyncEvent{
		RunID:      runID,
		Source:     source,
		StartedAt:  started,
		FinishedAt: finished,
	}

	if runErr != nil {
		s.logger.Error("Media import %s failed: %v", runID, runErr)
		s.metrics.ObserveRun("failed", finished.Sub(started))
		event.Type = events.TypeSyncFailed
		event.Error = runErr.Error()
	} else {
		s.metrics.ObserveRun("success", finished.Sub(started))
		s.metrics.AddItems("created", len(result.Created))
		s.metrics.AddItems("updated", len(result.Updated))
		s.metrics.AddItems("deleted", len(result.Deleted))
		s.metrics.AddItems("unchanged", len(result.Unchanged))
		event.Type = events.TypeSyncCompleted
		event.Result = result
	}

	// The request context may already be gone; the event is still worth sending.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		s.logger.Error("Failed to publish %s for run %s: %v", event.Type, runID, err)
	}
}
