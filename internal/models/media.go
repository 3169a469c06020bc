package models

import (
	"time"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gorm.io/gorm"
)

// Metadata keys persisted for every externally sourced media record.
const (
	MetaIsExternal       = "_is_external_media"
	MetaExternalID       = "_external_id"
	MetaExternalURLs     = "_external_urls"
	MetaExternalMetadata = "_external_metadata"
)

// URLSet maps size labels to absolute URLs, keeping the order in which labels were received.
type URLSet = orderedmap.OrderedMap[string, string]

// NewURLSet builds a URLSet from label/url pairs in the given order.
func NewURLSet(pairs ...string) *URLSet {
	urls := orderedmap.New[string, string]()
	for i := 0; i+1 < len(pairs); i += 2 {
		urls.Set(pairs[i], pairs[i+1])
	}
	return urls
}

// MediaRecord is an attachment whose binary lives elsewhere. Only metadata and source URLs are stored.
type MediaRecord struct {
	ID               string                 `json:"id" gorm:"primaryKey;size:36"`
	Title            string                 `json:"title" gorm:"not null"`
	MimeType         string                 `json:"mime_type" gorm:"not null"`
	Status           string                 `json:"status" gorm:"default:inherit"`
	IsExternal       bool                   `json:"is_external" gorm:"not null;default:false;index"`
	ExternalID       string                 `json:"external_id" gorm:"index"`
	ExternalURLs     *URLSet                `json:"external_urls" gorm:"type:text;serializer:json"`
	ExternalMetadata map[string]interface{} `json:"external_metadata" gorm:"type:text;serializer:jsonnumber"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// Meta returns the persisted metadata fields keyed the same way a candidate update is keyed.
func (m *MediaRecord) Meta() map[string]interface{} {
	isExternal := ""
	if m.IsExternal {
		isExternal = "1"
	}
	return map[string]interface{}{
		MetaIsExternal:       isExternal,
		MetaExternalID:       m.ExternalID,
		MetaExternalURLs:     m.ExternalURLs,
		MetaExternalMetadata: m.ExternalMetadata,
	}
}

func (m *MediaRecord) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Status == "" {
		m.Status = "inherit"
	}
	return nil
}
