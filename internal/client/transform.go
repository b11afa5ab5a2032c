package client

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

const (
	captionOverlay = "l-text,ie-%s,ly-N20,lx-20,fs-100,co-white,bg-000000A0,l-end"

	// VideoTransform pads videos into a fixed frame over a blurred background.
	VideoTransform = "w-400,h-200,cm-pad_resize,bg-blurred"
)

// EncodeOverlayText base64-encodes text and percent-encodes the result so it
// can be embedded in a transformation segment. "/" is left unescaped.
func EncodeOverlayText(text string) string {
	if text == "" {
		return ""
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	return strings.ReplaceAll(url.QueryEscape(encoded), "%2F", "/")
}

// IsLocalPath reports whether raw names a filesystem path rather than a
// remote URL.
func IsLocalPath(raw string) bool {
	return strings.HasPrefix(raw, "/") ||
		strings.HasPrefix(raw, "file://") ||
		strings.HasPrefix(raw, `C:\`)
}

// TransformURL builds a display URL for a hosted media file. A caption
// replaces params with a text overlay. The transformation is inserted after
// the first path segment as "tr:<params>". Local paths, URLs too short to
// carry a path, and calls without params or caption are returned unchanged.
func TransformURL(original, params, caption string) string {
	if original == "" || IsLocalPath(original) {
		return original
	}

	if caption != "" {
		params = fmt.Sprintf(captionOverlay, EncodeOverlayText(caption))
	}
	if params == "" {
		return original
	}

	parts := strings.Split(original, "/")
	if len(parts) < 5 {
		return original
	}

	base := strings.Join(parts[:4], "/")
	filePath := strings.Join(parts[4:], "/")
	return base + "/tr:" + params + "/" + filePath
}
