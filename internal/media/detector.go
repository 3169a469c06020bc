package media

import (
	"context"
	"encoding/json"

	"extmedia/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// RecordReader loads a single local record.
type RecordReader interface {
	Get(ctx context.Context, localID string) (*models.MediaRecord, error)
}

// Detector decides whether an existing record differs from a candidate.
type Detector struct {
	records RecordReader
}

func NewDetector(records RecordReader) *Detector {
	return &Detector{records: records}
}

// NeedsUpdate loads the persisted record and compares it with the candidate title and metadata.
func (d *Detector) NeedsUpdate(ctx context.Context, localID, title string, meta map[string]interface{}) (bool, error) {
	rec, err := d.records.Get(ctx, localID)
	if err != nil {
		return false, err
	}
	return Changed(rec, title, meta), nil
}

// Changed compares title by exact string equality and every candidate metadata field except the
// identity fields. A field the record lacks, or holds in a different shape, counts as a change.
func Changed(rec *models.MediaRecord, title string, meta map[string]interface{}) bool {
	if rec.Title != title {
		return true
	}

	current := rec.Meta()
	for key, want := range meta {
		if key == models.MetaIsExternal || key == models.MetaExternalID {
			continue
		}
		got, ok := current[key]
		if !ok || !canonicalEqual(got, want) {
			return true
		}
	}
	return false
}

// canonicalEqual compares the JSON forms of a and b, so key order and Go container types do not
// matter but value types do: "1" and 1 differ. Numbers compare by their literal digits.
func canonicalEqual(a, b interface{}) bool {
	ca, ok := canonicalize(a)
	if !ok {
		return false
	}
	cb, ok := canonicalize(b)
	if !ok {
		return false
	}
	return cmp.Equal(ca, cb, cmpopts.EquateEmpty())
}

func canonicalize(v interface{}) (interface{}, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var out interface{}
	if err := models.DecodeJSON(data, &out); err != nil {
		return nil, false
	}
	return out, true
}
