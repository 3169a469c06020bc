package media

import (
	"context"
	"errors"

	"extmedia/internal/models"

	"gorm.io/gorm"
)

// RecordFields are the columns a sync writes on update.
type RecordFields struct {
	Title      string
	MimeType   string
	ExternalID string
	URLs       *models.URLSet
	Metadata   map[string]interface{}
}

// Store is the content repository seen by the reconciler.
type Store interface {
	RecordReader
	ExternalIndex(ctx context.Context) ([]IndexEntry, error)
	Create(ctx context.Context, rec *models.MediaRecord) error
	Update(ctx context.Context, localID string, fields RecordFields) error
	Delete(ctx context.Context, localID string) error
}

// GormStore keeps media records in the media_records table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ExternalIndex(ctx context.Context) ([]IndexEntry, error) {
	var rows []struct {
		ID         string
		ExternalID string
	}
	err := s.db.WithContext(ctx).
		Model(&models.MediaRecord{}).
		Select("id, external_id").
		Where("is_external = ?", true).
		Order("created_at, id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]IndexEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, IndexEntry{ExternalID: r.ExternalID, LocalID: r.ID})
	}
	return entries, nil
}

func (s *GormStore) Get(ctx context.Context, localID string) (*models.MediaRecord, error) {
	var rec models.MediaRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", localID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *GormStore) Create(ctx context.Context, rec *models.MediaRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *GormStore) Update(ctx context.Context, localID string, fields RecordFields) error {
	res := s.db.WithContext(ctx).
		Model(&models.MediaRecord{ID: localID}).
		Select("title", "mime_type", "is_external", "external_id", "external_urls", "external_metadata", "updated_at").
		Updates(&models.MediaRecord{
			Title:            fields.Title,
			MimeType:         fields.MimeType,
			IsExternal:       true,
			ExternalID:       fields.ExternalID,
			ExternalURLs:     fields.URLs,
			ExternalMetadata: fields.Metadata,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record permanently.
func (s *GormStore) Delete(ctx context.Context, localID string) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&models.MediaRecord{}, "id = ?", localID).Error
}

// List pages through all media records, newest first.
func (s *GormStore) List(ctx context.Context, offset, limit int, externalOnly bool) ([]models.MediaRecord, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.MediaRecord{})
	if externalOnly {
		query = query.Where("is_external = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.MediaRecord
	if err := query.Order("created_at DESC, id").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
