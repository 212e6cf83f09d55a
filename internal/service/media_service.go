package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"sync"

	"sokoni/internal/domain"
	"sokoni/pkg/cloudinary"
	"sokoni/pkg/mediabuf"

	"github.com/google/uuid"
)

var (
	ErrBadPurpose    = errors.New("unknown upload purpose")
	ErrEphemeralRef  = errors.New("reference is valid only in the client (blob: URL)")
	ErrUnknownScheme = errors.New("unrecognized media reference scheme")
	ErrEmptyUpload   = errors.New("empty upload")
)

// Resolved is the per-item outcome of an ingestion batch. Exactly one of
// URL or Err is meaningful.
type Resolved struct {
	Ref       string
	URL       string
	Filename  string
	MediaType string // IMAGE | VIDEO
	Size      int64
	Err       error
}

// MediaService resolves client media references to durable storage URLs.
// data: URIs are decoded, size-checked and uploaded (images re-encoded to the
// canonical format); http(s) URLs pass through unchanged; blob: and unknown
// schemes resolve to a per-item error. Persisting anything other than a
// durable URL is a bug in the caller.
type MediaService struct {
	uploads  cloudinary.Client
	maxBytes int64
}

func NewMediaService(uploads cloudinary.Client, maxBytes int64) *MediaService {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &MediaService{uploads: uploads, maxBytes: maxBytes}
}

func validPurpose(purpose string) bool {
	switch purpose {
	case domain.PurposeListings, domain.PurposeAvatars, domain.PurposeChat:
		return true
	}
	return false
}

func guessTypeFromURL(ref string) string {
	switch strings.ToLower(path.Ext(strings.SplitN(ref, "?", 2)[0])) {
	case ".mp4", ".webm", ".mov":
		return domain.MediaTypeVideo
	}
	return domain.MediaTypeImage
}

func (s *MediaService) folder(purpose string, userID uint) string {
	return path.Join("Sokoni", purpose, fmt.Sprintf("%d", userID))
}

// Ingest resolves a batch concurrently. Every item settles: the result slice
// always has one entry per input in input order, and a failing item never
// cancels its siblings.
func (s *MediaService) Ingest(ctx context.Context, userID uint, purpose string, refs []string) ([]Resolved, error) {
	if !validPurpose(purpose) {
		return nil, ErrBadPurpose
	}
	results := make([]Resolved, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			results[i] = s.ingestOne(ctx, userID, purpose, ref)
		}(i, ref)
	}
	wg.Wait()
	return results, nil
}

func (s *MediaService) ingestOne(ctx context.Context, userID uint, purpose, ref string) Resolved {
	switch mediabuf.Classify(ref) {
	case mediabuf.SchemeHTTP:
		// Already durable; trust it as-is.
		return Resolved{Ref: ref, URL: ref, MediaType: guessTypeFromURL(ref)}
	case mediabuf.SchemeBlob:
		return Resolved{Ref: ref, Err: ErrEphemeralRef}
	case mediabuf.SchemeUnknown:
		return Resolved{Ref: ref, Err: ErrUnknownScheme}
	}

	mime, data, err := mediabuf.ParseDataURI(ref, s.maxBytes)
	if err != nil {
		return Resolved{Ref: ref, Err: err}
	}
	mediaType, ok := mediabuf.MediaType(mime)
	if !ok {
		return Resolved{Ref: ref, Err: mediabuf.ErrMIMEBlocked}
	}
	return s.upload(ctx, userID, purpose, ref, mediaType, bytes.NewReader(data))
}

// IngestUpload resolves one multipart file upload. The declared MIME type is
// checked against the allow-list before any bytes are read.
func (s *MediaService) IngestUpload(ctx context.Context, userID uint, purpose, filename, mime string, r io.Reader, size int64) Resolved {
	if !validPurpose(purpose) {
		return Resolved{Ref: filename, Err: ErrBadPurpose}
	}
	if size <= 0 {
		return Resolved{Ref: filename, Err: ErrEmptyUpload}
	}
	if size > s.maxBytes {
		return Resolved{Ref: filename, Err: mediabuf.ErrTooLarge}
	}
	mediaType, ok := mediabuf.MediaType(mime)
	if !ok {
		return Resolved{Ref: filename, Err: mediabuf.ErrMIMEBlocked}
	}
	return s.upload(ctx, userID, purpose, filename, mediaType, r)
}

func (s *MediaService) upload(ctx context.Context, userID uint, purpose, ref, mediaType string, r io.Reader) Resolved {
	name := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	folder := s.folder(purpose, userID)

	var (
		url  string
		size int64
		err  error
	)
	if mediaType == domain.MediaTypeVideo {
		url, size, err = s.uploads.UploadVideo(ctx, r, folder, name)
	} else {
		url, size, err = s.uploads.UploadImage(ctx, r, folder, name)
	}
	if err != nil {
		log.Printf("[MEDIA] upload %s/%s: %v", folder, name, err)
		return Resolved{Ref: ref, Err: err}
	}
	return Resolved{
		Ref:       ref,
		URL:       url,
		Filename:  name,
		MediaType: mediaType,
		Size:      size,
	}
}
