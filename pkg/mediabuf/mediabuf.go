// Package mediabuf classifies and decodes client-local media references
// (data: URIs, blob: URLs) before ingestion resolves them to durable storage.
package mediabuf

import (
	"encoding/base64"
	"errors"
	"strings"
)

var (
	ErrNotDataURI  = errors.New("not a data URI")
	ErrBadEncoding = errors.New("malformed data URI payload")
	ErrTooLarge    = errors.New("media exceeds maximum size")
	ErrMIMEBlocked = errors.New("media type not allowed")
)

// Scheme classifies a client-supplied media reference.
type Scheme int

const (
	SchemeData Scheme = iota
	SchemeBlob
	SchemeHTTP // already durable, pass through
	SchemeUnknown
)

func Classify(ref string) Scheme {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return SchemeData
	case strings.HasPrefix(ref, "blob:"):
		return SchemeBlob
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return SchemeHTTP
	default:
		return SchemeUnknown
	}
}

// allow-list of declared MIME types, mapped to the stored media type
var allowedMIME = map[string]string{
	"image/jpeg":      "IMAGE",
	"image/png":       "IMAGE",
	"image/webp":      "IMAGE",
	"image/gif":       "IMAGE",
	"video/mp4":       "VIDEO",
	"video/webm":      "VIDEO",
	"video/quicktime": "VIDEO",
}

// MediaType maps an allowed MIME type to IMAGE or VIDEO.
func MediaType(mime string) (string, bool) {
	t, ok := allowedMIME[strings.ToLower(strings.TrimSpace(mime))]
	return t, ok
}

// ParseDataURI decodes a data: URI into its declared MIME type and raw bytes.
// maxBytes bounds the decoded size; 0 means unbounded.
func ParseDataURI(ref string, maxBytes int64) (mime string, data []byte, err error) {
	if !strings.HasPrefix(ref, "data:") {
		return "", nil, ErrNotDataURI
	}
	rest := ref[len("data:"):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", nil, ErrBadEncoding
	}
	meta, payload := rest[:comma], rest[comma+1:]
	base64Encoded := false
	for _, part := range strings.Split(meta, ";") {
		if part == "base64" {
			base64Encoded = true
		} else if mime == "" && strings.Contains(part, "/") {
			mime = part
		}
	}
	if mime == "" {
		mime = "text/plain"
	}
	if base64Encoded {
		// reject before decoding when the encoded form already exceeds the cap
		if maxBytes > 0 && int64(len(payload))/4*3 > maxBytes {
			return mime, nil, ErrTooLarge
		}
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return mime, nil, ErrBadEncoding
		}
	} else {
		data = []byte(payload)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return mime, nil, ErrTooLarge
	}
	return mime, data, nil
}
