package media

import (
	"bytes"
	"encoding/json"
	"fmt"

	"extmedia/internal/models"
)

const (
	// DefaultMimeType is stored when an item does not name one.
	DefaultMimeType = "application/octet-stream"

	defaultTitlePrefix = "External Media "
)

// ExternalItem is one entry of a pushed snapshot.
type ExternalItem struct {
	ID       string                 `json:"id"`
	Title    *string                `json:"title,omitempty"`
	MimeType *string                `json:"mime_type,omitempty"`
	URLs     *models.URLSet         `json:"urls"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	decodeErr error
}

// UnmarshalJSON accepts numeric ids and records, rather than returns, shape errors so that one
// malformed item never rejects the whole snapshot. Metadata numbers are kept as json.Number.
func (it *ExternalItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage        `json:"id"`
		Title    *string                `json:"title"`
		MimeType *string                `json:"mime_type"`
		URLs     *models.URLSet         `json:"urls"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	*it = ExternalItem{}
	if err := models.DecodeJSON(data, &raw); err != nil {
		it.decodeErr = err
		return nil
	}

	id, err := parseID(raw.ID)
	if err != nil {
		it.decodeErr = err
		return nil
	}

	it.ID = id
	it.Title = raw.Title
	it.MimeType = raw.MimeType
	it.URLs = raw.URLs
	it.Metadata = raw.Metadata
	return nil
}

func parseID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", fmt.Errorf("id must be a string or number: %w", err)
		}
		return n.String(), nil
	}
}

// Validate reports ErrInvalidItem when the item cannot take part in a sync.
func (it ExternalItem) Validate() error {
	if it.decodeErr != nil {
		return fmt.Errorf("%w: %v", ErrInvalidItem, it.decodeErr)
	}
	if it.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidItem)
	}
	if it.URLs == nil || it.URLs.Len() == 0 {
		return fmt.Errorf("%w: missing urls for %q", ErrInvalidItem, it.ID)
	}
	return nil
}

// ResolvedTitle returns the given title or a label built from the external id.
func (it ExternalItem) ResolvedTitle() string {
	if it.Title != nil {
		return *it.Title
	}
	return defaultTitlePrefix + it.ID
}

// ResolvedMimeType returns the given mime type or DefaultMimeType.
func (it ExternalItem) ResolvedMimeType() string {
	if it.MimeType != nil {
		return *it.MimeType
	}
	return DefaultMimeType
}

// ResolvedMetadata never returns nil.
func (it ExternalItem) ResolvedMetadata() map[string]interface{} {
	if it.Metadata == nil {
		return map[string]interface{}{}
	}
	return it.Metadata
}

// CandidateMeta is the metadata a record for this item must carry after a sync.
func (it ExternalItem) CandidateMeta() map[string]interface{} {
	return map[string]interface{}{
		models.MetaIsExternal:       "1",
		models.MetaExternalID:       it.ID,
		models.MetaExternalURLs:     it.URLs,
		models.MetaExternalMetadata: it.ResolvedMetadata(),
	}
}

// DecodeSnapshot parses a pushed body. Only a body that is not a JSON array is an error;
// malformed elements come back as items that fail Validate.
func DecodeSnapshot(data []byte) ([]ExternalItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidSnapshot
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	items := make([]ExternalItem, len(raws))
	for i, raw := range raws {
		// ExternalItem.UnmarshalJSON never fails.
		_ = json.Unmarshal(raw, &items[i])
	}
	return items, nil
}
