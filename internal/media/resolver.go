package media

import (
	"extmedia/internal/models"

	"github.com/spf13/cast"
)

const (
	// SizeFull is the label of the original, unresized asset.
	SizeFull = "full"

	// SizeFallback is tried after SizeFull when the requested label is missing.
	SizeFallback = "large"
)

// Resolution is the rendering source picked for a record and size.
type Resolution struct {
	URL     string `json:"url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Resized bool   `json:"is_intermediate"`
	Label   string `json:"size"`
}

// Resolve picks the URL for a size label: the label itself, then full, then large, then the first
// label received. ok is false when the record is not external or has no usable URL, meaning the
// caller keeps its own default.
func Resolve(rec *models.MediaRecord, size string) (Resolution, bool) {
	urls := externalURLs(rec)
	if urls == nil {
		return Resolution{}, false
	}

	for _, label := range []string{size, SizeFull, SizeFallback} {
		if label == "" {
			continue
		}
		if u, ok := urls.Get(label); ok && u != "" {
			return resolution(rec, label, u), true
		}
	}

	return firstResolution(rec, urls)
}

// ResolveDimensions handles a request for explicit width and height rather than a label: full,
// otherwise the first label received.
func ResolveDimensions(rec *models.MediaRecord, width, height int) (Resolution, bool) {
	urls := externalURLs(rec)
	if urls == nil {
		return Resolution{}, false
	}
	if u, ok := urls.Get(SizeFull); ok && u != "" {
		return resolution(rec, SizeFull, u), true
	}
	return firstResolution(rec, urls)
}

func firstResolution(rec *models.MediaRecord, urls *models.URLSet) (Resolution, bool) {
	for pair := urls.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value != "" {
			return resolution(rec, pair.Key, pair.Value), true
		}
	}
	return Resolution{}, false
}

// AttachmentURL is the URL of the record as a whole: full, otherwise the first label received.
func AttachmentURL(rec *models.MediaRecord) (string, bool) {
	urls := externalURLs(rec)
	if urls == nil {
		return "", false
	}
	if u, ok := urls.Get(SizeFull); ok && u != "" {
		return u, true
	}
	if first := urls.Oldest(); first != nil && first.Value != "" {
		return first.Value, true
	}
	return "", false
}

// SrcSetEnabled reports whether responsive srcset candidates may be built for the record.
// External records only know the sizes they were given, so srcset is off for them.
func SrcSetEnabled(rec *models.MediaRecord) bool {
	return rec == nil || !rec.IsExternal
}

func externalURLs(rec *models.MediaRecord) *models.URLSet {
	if rec == nil || !rec.IsExternal || rec.ExternalURLs == nil || rec.ExternalURLs.Len() == 0 {
		return nil
	}
	return rec.ExternalURLs
}

func resolution(rec *models.MediaRecord, label, url string) Resolution {
	w, h := dimensions(rec.ExternalMetadata, label)
	return Resolution{
		URL:     url,
		Width:   w,
		Height:  h,
		Resized: label != SizeFull,
		Label:   label,
	}
}

// dimensions reads metadata.sizes[label].{width,height}, and for full also the top-level
// width and height. Unknown dimensions are zero.
func dimensions(meta map[string]interface{}, label string) (int, int) {
	if meta == nil {
		return 0, 0
	}
	if sizes, err := cast.ToStringMapE(meta["sizes"]); err == nil {
		if entry, err := cast.ToStringMapE(sizes[label]); err == nil {
			w, werr := cast.ToIntE(entry["width"])
			h, herr := cast.ToIntE(entry["height"])
			if werr == nil && herr == nil {
				return w, h
			}
		}
	}
	if label == SizeFull {
		w, werr := cast.ToIntE(meta["width"])
		h, herr := cast.ToIntE(meta["height"])
		if werr == nil && herr == nil {
			return w, h
		}
	}
	return 0, 0
}
