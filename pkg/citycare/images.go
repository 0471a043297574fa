package citycare

import "strings"

const (
	DefaultImageBaseURL = "https://citycaretest.s3.ap-south-2.amazonaws.com/"
	PlaceholderImage    = "/placeholder.jpg"
)

// Images resolves catalog image paths against the bucket base URL.
type Images struct {
	base string
}

func NewImages(base string) Images {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultImageBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return Images{base: base}
}

// URL keeps absolute URLs, prefixes relative paths and maps empty to the placeholder.
func (i Images) URL(path string) string {
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		return PlaceholderImage
	case strings.HasPrefix(path, "http"):
		return path
	default:
		base := i.base
		if base == "" {
			base = DefaultImageBaseURL
		}
		return base + strings.TrimLeft(path, "/")
	}
}
