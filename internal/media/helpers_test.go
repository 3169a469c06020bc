package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"extmedia/internal/database"
	"extmedia/internal/logger"
	"extmedia/internal/models"

	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New("error")
}

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := database.New("sqlite://"+filepath.Join(t.TempDir(), "media.db"), "silent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewGormStore(db.DB)
}

func item(id string, urls ...string) ExternalItem {
	return ExternalItem{ID: id, URLs: models.NewURLSet(urls...)}
}

func strPtr(s string) *string {
	return &s
}

// memStore is an in-memory Store with failure injection.
type memStore struct {
	records map[string]*models.MediaRecord
	order   []string
	nextID  int

	indexErr   error
	createErrs map[string]error
	updateErr  error
	deleteErr  error
	panicOn    string

	creates, updates, deletes int
}

func newMemStore() *memStore {
	return &memStore{
		records:    map[string]*models.MediaRecord{},
		createErrs: map[string]error{},
	}
}

func (s *memStore) ExternalIndex(ctx context.Context) ([]IndexEntry, error) {
	if s.indexErr != nil {
		return nil, s.indexErr
	}
	var entries []IndexEntry
	for _, id := range s.order {
		rec, ok := s.records[id]
		if !ok || !rec.IsExternal {
			continue
		}
		entries = append(entries, IndexEntry{ExternalID: rec.ExternalID, LocalID: rec.ID})
	}
	return entries, nil
}

func (s *memStore) Get(ctx context.Context, localID string) (*models.MediaRecord, error) {
	rec, ok := s.records[localID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *memStore) Create(ctx context.Context, rec *models.MediaRecord) error {
	if rec.ExternalID == s.panicOn && s.panicOn != "" {
		panic("storage exploded")
	}
	if err := s.createErrs[rec.ExternalID]; err != nil {
		return err
	}
	s.nextID++
	rec.ID = fmt.Sprintf("local-%d", s.nextID)
	cp := *rec
	s.records[rec.ID] = &cp
	s.order = append(s.order, rec.ID)
	s.creates++
	return nil
}

func (s *memStore) Update(ctx context.Context, localID string, f RecordFields) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	rec, ok := s.records[localID]
	if !ok {
		return ErrNotFound
	}
	rec.Title = f.Title
	rec.MimeType = f.MimeType
	rec.ExternalID = f.ExternalID
	rec.ExternalURLs = f.URLs
	rec.ExternalMetadata = f.Metadata
	s.updates++
	return nil
}

func (s *memStore) Delete(ctx context.Context, localID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.records, localID)
	s.deletes++
	return nil
}

func (s *memStore) byExternalID(externalID string) *models.MediaRecord {
	for _, rec := range s.records {
		if rec.IsExternal && rec.ExternalID == externalID {
			return rec
		}
	}
	return nil
}

var errBoom = errors.New("boom")
