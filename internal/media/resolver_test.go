package media

import (
	"testing"

	"extmedia/internal/models"

	"github.com/stretchr/testify/assert"
)

func externalRecord(urls ...string) *models.MediaRecord {
	return &models.MediaRecord{IsExternal: true, ExternalID: "A1", ExternalURLs: models.NewURLSet(urls...)}
}

func TestResolve_FallsBackToFull(t *testing.T) {
	rec := externalRecord("thumbnail", "u1", "full", "u2")

	res, ok := Resolve(rec, "medium")
	assert.True(t, ok)
	assert.Equal(t, "u2", res.URL)
	assert.False(t, res.Resized)
	assert.Equal(t, SizeFull, res.Label)
}

func TestResolve_ExactMatchIsResizedVariant(t *testing.T) {
	rec := externalRecord("thumbnail", "u1", "full", "u2")

	res, ok := Resolve(rec, "thumbnail")
	assert.True(t, ok)
	assert.Equal(t, "u1", res.URL)
	assert.True(t, res.Resized)
}

func TestResolve_FallbackOrder(t *testing.T) {
	res, ok := Resolve(externalRecord("thumbnail", "u1", "large", "u3"), "medium")
	assert.True(t, ok)
	assert.Equal(t, "u3", res.URL)
	assert.True(t, res.Resized)

	res, ok = Resolve(externalRecord("small", "s", "thumbnail", "t"), "medium")
	assert.True(t, ok)
	assert.Equal(t, "s", res.URL, "first received label wins")
	assert.Equal(t, "small", res.Label)

	res, ok = Resolve(externalRecord("thumbnail", "", "medium", "m"), "thumbnail")
	assert.True(t, ok)
	assert.Equal(t, "m", res.URL, "empty URLs are skipped")
}

func TestResolve_NoOverride(t *testing.T) {
	_, ok := Resolve(nil, "full")
	assert.False(t, ok)

	_, ok = Resolve(&models.MediaRecord{ExternalURLs: models.NewURLSet("full", "u")}, "full")
	assert.False(t, ok, "local records are never overridden")

	_, ok = Resolve(externalRecord(), "full")
	assert.False(t, ok)

	_, ok = Resolve(externalRecord("full", ""), "full")
	assert.False(t, ok)
}

func TestResolve_Dimensions(t *testing.T) {
	rec := externalRecord("thumbnail", "u1", "full", "u2")
	rec.ExternalMetadata = map[string]interface{}{
		"width":  float64(2400),
		"height": float64(1600),
		"sizes": map[string]interface{}{
			"thumbnail": map[string]interface{}{"width": float64(150), "height": "150"},
		},
	}

	res, _ := Resolve(rec, "thumbnail")
	assert.Equal(t, 150, res.Width)
	assert.Equal(t, 150, res.Height)

	res, _ = Resolve(rec, "full")
	assert.Equal(t, 2400, res.Width)
	assert.Equal(t, 1600, res.Height)

	rec.ExternalMetadata = map[string]interface{}{"sizes": "nonsense"}
	res, _ = Resolve(rec, "thumbnail")
	assert.Zero(t, res.Width)
	assert.Zero(t, res.Height)
}

func TestResolveDimensions_UsesFull(t *testing.T) {
	res, ok := ResolveDimensions(externalRecord("thumbnail", "u1", "full", "u2"), 640, 480)
	assert.True(t, ok)
	assert.Equal(t, "u2", res.URL)
	assert.False(t, res.Resized)
}

func TestAttachmentURL(t *testing.T) {
	u, ok := AttachmentURL(externalRecord("thumbnail", "u1", "full", "u2"))
	assert.True(t, ok)
	assert.Equal(t, "u2", u)

	u, ok = AttachmentURL(externalRecord("thumbnail", "u1", "medium", "u3"))
	assert.True(t, ok)
	assert.Equal(t, "u1", u)

	_, ok = AttachmentURL(&models.MediaRecord{})
	assert.False(t, ok)
}

func TestSrcSetEnabled(t *testing.T) {
	assert.False(t, SrcSetEnabled(externalRecord("full", "u")))
	assert.True(t, SrcSetEnabled(&models.MediaRecord{}))
}

func TestResolveDimensions_SkipsLargeFallback(t *testing.T) {
	res, ok := ResolveDimensions(externalRecord("thumbnail", "t", "large", "l"), 640, 480)
	assert.True(t, ok)
	assert.Equal(t, "t", res.URL)
	assert.Equal(t, "thumbnail", res.Label)
	assert.True(t, res.Resized)

	_, ok = ResolveDimensions(externalRecord(), 640, 480)
	assert.False(t, ok)
}
