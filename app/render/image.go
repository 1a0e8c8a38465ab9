package render

import (
	"fmt"
	"regexp"
	"strings"

	"storyline/app/models"
)

const DefaultImageBaseURL = "https://cdn.sanity.io"

var dimensions = regexp.MustCompile(`^\d+x\d+$`)

// ImageURLBuilder turns image asset references into CDN URLs.
type ImageURLBuilder struct {
	ProjectID string
	Dataset   string
	BaseURL   string
}

// URL maps image-<id>-<W>x<H>-<format> to <base>/images/<project>/<dataset>/<id>-<W>x<H>.<format>.
// Malformed references yield "".
func (b ImageURLBuilder) URL(ref string) string {
	parts := strings.Split(ref, "-")
	if len(parts) < 4 || parts[0] != "image" {
		return ""
	}
	format := parts[len(parts)-1]
	dims := parts[len(parts)-2]
	id := strings.Join(parts[1:len(parts)-2], "-")
	if id == "" || format == "" || !dimensions.MatchString(dims) {
		return ""
	}
	base := b.BaseURL
	if base == "" {
		base = DefaultImageBaseURL
	}
	return fmt.Sprintf("%s/images/%s/%s/%s-%s.%s", strings.TrimSuffix(base, "/"), b.ProjectID, b.Dataset, id, dims, format)
}

// For is URL for an optional image.
func (b ImageURLBuilder) For(img *models.Image) string {
	if img == nil || img.Asset == nil {
		return ""
	}
	return b.URL(img.Asset.Ref)
}
