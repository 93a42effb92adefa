package enums

import "fmt"

// AttachmentKind distinguishes the single current license copy from the
// ordered renewal-process documents.
type AttachmentKind string

const (
	AttachmentKindCurrent AttachmentKind = "current"
	AttachmentKindRenewal AttachmentKind = "renewal"
)

var validAttachmentKinds = []AttachmentKind{AttachmentKindCurrent, AttachmentKindRenewal}

// String implements fmt.Stringer.
func (k AttachmentKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known attachment kind.
func (k AttachmentKind) IsValid() bool {
	for _, candidate := range validAttachmentKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseAttachmentKind converts raw input into AttachmentKind.
func ParseAttachmentKind(value string) (AttachmentKind, error) {
	for _, candidate := range validAttachmentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attachment kind %q", value)
}
