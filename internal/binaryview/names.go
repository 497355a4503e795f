package binaryview

import (
	"mime"
	"net/url"
	"path"
	"strings"
)

const fallbackBase = "response"

// FilenameHint suggests a filename for a response body. Preference
// order: Content-Disposition (RFC 5987 filename* first), then the URL
// path, then a generic name with a media-type derived extension.
func FilenameHint(disposition, rawURL, contentType string) string {
	if name := dispositionFilename(disposition); name != "" {
		return sanitizeName(name, contentType)
	}
	if name := urlFilename(rawURL); name != "" {
		return sanitizeName(name, contentType)
	}
	return fallbackBase + ExtensionHint(contentType)
}

// ExtensionHint maps a media type to a file extension, including the
// leading dot. Unknown or absent types resolve to ".bin".
func ExtensionHint(contentType string) string {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	if ext, ok := knownExtensions[mediaType]; ok {
		return ext
	}
	switch {
	case strings.HasSuffix(mediaType, "+json") || strings.Contains(mediaType, "json"):
		return ".json"
	case strings.HasSuffix(mediaType, "+xml") || strings.Contains(mediaType, "xml"):
		return ".xml"
	case strings.HasPrefix(mediaType, "text/"):
		return ".txt"
	}
	return ".bin"
}

var knownExtensions = map[string]string{
	"application/json":       ".json",
	"application/javascript": ".js",
	"application/pdf":        ".pdf",
	"application/zip":        ".zip",
	"application/xml":        ".xml",
	"text/html":              ".htm",
	"text/plain":             ".txt",
	"text/css":               ".css",
	"text/csv":               ".csv",
	"text/xml":               ".xml",
	"image/png":              ".png",
	"image/jpeg":             ".jpg",
	"image/gif":              ".gif",
	"image/webp":             ".webp",
	"image/svg+xml":          ".svg",
}

// dispositionFilename parses Content-Disposition by hand because
// mime.ParseMediaType rejects headers carrying both filename and
// filename* (it folds them onto the same key).
func dispositionFilename(disposition string) string {
	parts := strings.Split(disposition, ";")
	if len(parts) < 2 {
		return ""
	}

	plain := ""
	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch key {
		case "filename*":
			if decoded := decodeExtValue(value); decoded != "" {
				return decoded
			}
		case "filename":
			plain = strings.Trim(value, `"`)
		}
	}
	return plain
}

// decodeExtValue decodes an RFC 5987 extended value of the form
// charset'lang'percent-encoded. Only UTF-8 and ISO-8859-1 payloads are
// expected in practice; the bytes are passed through either way.
func decodeExtValue(value string) string {
	segments := strings.SplitN(value, "'", 3)
	if len(segments) != 3 {
		return ""
	}
	decoded, err := url.PathUnescape(segments[2])
	if err != nil {
		return ""
	}
	return decoded
}

func urlFilename(rawURL string) string {
	if strings.TrimSpace(rawURL) == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" || base == "" {
		return ""
	}
	return base
}

func sanitizeName(name, contentType string) string {
	cleaned := strings.ReplaceAll(name, "\\", "/")
	cleaned = path.Base(cleaned)
	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, cleaned)

	if cleaned == "" || cleaned == "." || cleaned == ".." || cleaned == "/" {
		return fallbackBase + ExtensionHint(contentType)
	}
	if path.Ext(cleaned) == "" {
		cleaned += ExtensionHint(contentType)
	}
	return cleaned
}
