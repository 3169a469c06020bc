package media

import (
	"context"

	"extmedia/internal/logger"
	"extmedia/internal/models"
)

// SyncResult partitions every processed or removed external id into exactly one bucket.
type SyncResult struct {
	Created   []string `json:"created"`
	Updated   []string `json:"updated"`
	Deleted   []string `json:"deleted"`
	Unchanged []string `json:"unchanged"`
}

func NewSyncResult() *SyncResult {
	return &SyncResult{
		Created:   []string{},
		Updated:   []string{},
		Deleted:   []string{},
		Unchanged: []string{},
	}
}

// Reconciler mirrors a full snapshot of external items into the local store.
//
// Every decision is derived from what is persisted when the run starts, so a run that stopped
// half way is repaired by running the same snapshot again.
type Reconciler struct {
	store    Store
	detector *Detector
	logger   *logger.Logger
}

func NewReconciler(store Store, logger *logger.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		detector: NewDetector(store),
		logger:   logger,
	}
}

// Reconcile creates, updates and deletes local records until they match items.
//
// Invalid items are skipped and never count as seen, so an existing record whose item arrives
// malformed is kept. A failed create drops that item from the result. Any other storage failure
// stops the run; writes already made stay in place.
func (r *Reconciler) Reconcile(ctx context.Context, items []ExternalItem) (*SyncResult, error) {
	index, err := BuildIndex(ctx, r.store)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Reconciling %d items against %d mirrored records", len(items), index.Len())

	result := NewSyncResult()
	seen := make(map[string]struct{}, len(items))

	for i, item := range items {
		if err := item.Validate(); err != nil {
			r.logger.Debug("Skipping item %d: %v", i, err)
			continue
		}
		if _, dup := seen[item.ID]; dup {
			r.logger.Warn("Skipping duplicate item %q at position %d", item.ID, i)
			continue
		}
		seen[item.ID] = struct{}{}

		title := item.ResolvedTitle()
		meta := item.CandidateMeta()

		if localID, ok := index.Lookup(item.ID); ok {
			changed, err := r.detector.NeedsUpdate(ctx, localID, title, meta)
			if err != nil {
				return nil, &PersistenceError{Op: OpLoad, ExternalID: item.ID, Err: err}
			}
			if !changed {
				result.Unchanged = append(result.Unchanged, item.ID)
				continue
			}

			if err := r.store.Update(ctx, localID, RecordFields{
				Title:      title,
				MimeType:   item.ResolvedMimeType(),
				ExternalID: item.ID,
				URLs:       item.URLs,
				Metadata:   item.ResolvedMetadata(),
			}); err != nil {
				return nil, &PersistenceError{Op: OpUpdate, ExternalID: item.ID, Err: err}
			}
			result.Updated = append(result.Updated, item.ID)
			continue
		}

		rec := &models.MediaRecord{
			Title:            title,
			MimeType:         item.ResolvedMimeType(),
			IsExternal:       true,
			ExternalID:       item.ID,
			ExternalURLs:     item.URLs,
			ExternalMetadata: item.ResolvedMetadata(),
		}
		if err := r.store.Create(ctx, rec); err != nil {
			if ctx.Err() != nil {
				return nil, &PersistenceError{Op: OpCreate, ExternalID: item.ID, Err: ctx.Err()}
			}
			r.logger.Error("%v", &PersistenceError{Op: OpCreate, ExternalID: item.ID, Err: err})
			continue
		}
		result.Created = append(result.Created, item.ID)
	}

	for _, externalID := range index.ExternalIDs() {
		if _, ok := seen[externalID]; ok {
			continue
		}
		localID, _ := index.Lookup(externalID)
		if err := r.store.Delete(ctx, localID); err != nil {
			return nil, &PersistenceError{Op: OpDelete, ExternalID: externalID, Err: err}
		}
		result.Deleted = append(result.Deleted, externalID)
	}

	r.logger.Info("Reconcile finished: %d created, %d updated, %d deleted, %d unchanged",
		len(result.Created), len(result.Updated), len(result.Deleted), len(result.Unchanged))

	return result, nil
}
