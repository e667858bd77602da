package sanity

import (
	"fmt"
	"net/url"
	"strings"
)

// ImageBuilder turns image asset refs into CDN URLs for one project/dataset.
// It holds read-only configuration and is passed to whoever needs URLs.
type ImageBuilder struct {
	baseURL string
}

// NewImageBuilder returns nil when projectID or dataset is empty; a nil
// builder yields "" for every ref.
func NewImageBuilder(projectID, dataset string) *ImageBuilder {
	if projectID == "" || dataset == "" {
		return nil
	}
	return &ImageBuilder{
		baseURL: fmt.Sprintf("https://cdn.sanity.io/images/%s/%s/",
			url.PathEscape(projectID), url.PathEscape(dataset)),
	}
}

// URL builds the CDN URL for ref ("image-<id>-<w>x<h>-<ext>"). Width and
// height are applied as resize hints when positive. Unusable refs yield "".
func (b *ImageBuilder) URL(ref string, width, height int) string {
	if b == nil {
		return ""
	}
	parts := strings.Split(ref, "-")
	if len(parts) != 4 || parts[0] != "image" || parts[1] == "" || parts[3] == "" ||
		!strings.Contains(parts[2], "x") {
		return ""
	}

	u := b.baseURL + parts[1] + "-" + parts[2] + "." + parts[3]

	q := url.Values{}
	if width > 0 {
		q.Set("w", fmt.Sprint(width))
	}
	if height > 0 {
		q.Set("h", fmt.Sprint(height))
	}
	if width > 0 && height > 0 {
		q.Set("fit", "crop")
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}
