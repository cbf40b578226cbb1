package enums

import "strings"

// MediaKind is the broad class of an uploaded post attachment.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// MediaKindFromContentType maps a MIME type onto a MediaKind; ok is false for anything else.
func MediaKindFromContentType(contentType string) (MediaKind, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return MediaKindImage, true
	case strings.HasPrefix(ct, "video/"):
		return MediaKindVideo, true
	default:
		return "", false
	}
}
