package attachments

import (
	"mime"
	"strings"
)

// allowedMimeTypes is the document allow-list: scanned licenses arrive as
// PDFs or photos, nothing else is accepted.
var allowedMimeTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
}

func isAllowedMime(contentType string) bool {
	parsed, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, candidate := range allowedMimeTypes {
		if strings.EqualFold(candidate, parsed) {
			return true
		}
	}
	return false
}

// AllowedMimeTypes returns the accepted content types for error details.
func AllowedMimeTypes() []string {
	out := make([]string, len(allowedMimeTypes))
	copy(out, allowedMimeTypes)
	return out
}
