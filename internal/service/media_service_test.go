package service

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"sokoni/internal/domain"
	"sokoni/pkg/mediabuf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	mu     sync.Mutex
	images int
	videos int
	fail   bool
}

func (f *fakeUploader) UploadImage(_ context.Context, file io.Reader, folder, publicID string) (string, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", 0, errors.New("upstream down")
	}
	b, _ := io.ReadAll(file)
	f.images++
	return "https://res.cloudinary.com/demo/image/upload/" + folder + "/" + publicID + ".webp", int64(len(b)), nil
}

func (f *fakeUploader) UploadVideo(_ context.Context, file io.Reader, folder, publicID string) (string, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", 0, errors.New("upstream down")
	}
	b, _ := io.ReadAll(file)
	f.videos++
	return "https://res.cloudinary.com/demo/video/upload/" + folder + "/" + publicID + ".mp4", int64(len(b)), nil
}

func dataURI(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func TestIngestSettlesEveryItem(t *testing.T) {
	up := &fakeUploader{}
	svc := NewMediaService(up, 1<<20)

	refs := []string{
		dataURI("image/png", []byte("png-bytes")),
		"blob:https://sokoni.co.ke/51bb7e33",
		"https://res.cloudinary.com/demo/image/upload/existing.webp",
		"ftp://old-school/pic.jpg",
		dataURI("video/mp4", []byte("mp4-bytes")),
	}
	results, err := svc.Ingest(context.Background(), 9, domain.PurposeListings, refs)
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.NoError(t, results[0].Err)
	assert.Contains(t, results[0].URL, ".webp")
	assert.Equal(t, domain.MediaTypeImage, results[0].MediaType)

	assert.ErrorIs(t, results[1].Err, ErrEphemeralRef)

	assert.NoError(t, results[2].Err)
	assert.Equal(t, refs[2], results[2].URL, "durable URLs pass through unchanged")

	assert.ErrorIs(t, results[3].Err, ErrUnknownScheme)

	assert.NoError(t, results[4].Err)
	assert.Equal(t, domain.MediaTypeVideo, results[4].MediaType)

	assert.Equal(t, 1, up.images)
	assert.Equal(t, 1, up.videos)
}

func TestIngestFailureDoesNotCancelSiblings(t *testing.T) {
	up := &fakeUploader{}
	svc := NewMediaService(up, 16) // tiny cap

	big := dataURI("image/jpeg", []byte(strings.Repeat("x", 64)))
	small := dataURI("image/jpeg", []byte("ok"))

	results, err := svc.Ingest(context.Background(), 9, domain.PurposeListings, []string{big, small})
	require.NoError(t, err)
	assert.ErrorIs(t, results[0].Err, mediabuf.ErrTooLarge)
	assert.NoError(t, results[1].Err)
}

func TestIngestRejectsBlockedMIME(t *testing.T) {
	svc := NewMediaService(&fakeUploader{}, 1<<20)

	results, err := svc.Ingest(context.Background(), 9, domain.PurposeAvatars, []string{
		dataURI("application/x-msdownload", []byte("MZ")),
	})
	require.NoError(t, err)
	assert.ErrorIs(t, results[0].Err, mediabuf.ErrMIMEBlocked)
}

func TestIngestUnknownPurpose(t *testing.T) {
	svc := NewMediaService(&fakeUploader{}, 1<<20)
	_, err := svc.Ingest(context.Background(), 9, "profile-pix", []string{"https://x.example/a.png"})
	assert.ErrorIs(t, err, ErrBadPurpose)
}

func TestIngestUploadSizeAndMIMEChecks(t *testing.T) {
	svc := NewMediaService(&fakeUploader{}, 16)

	r := svc.IngestUpload(context.Background(), 9, domain.PurposeChat, "a.jpg", "image/jpeg", strings.NewReader("ok"), 2)
	assert.NoError(t, r.Err)
	assert.NotEmpty(t, r.URL)

	r = svc.IngestUpload(context.Background(), 9, domain.PurposeChat, "b.jpg", "image/jpeg", strings.NewReader("x"), 64)
	assert.ErrorIs(t, r.Err, mediabuf.ErrTooLarge)

	r = svc.IngestUpload(context.Background(), 9, domain.PurposeChat, "c.exe", "application/octet-stream", strings.NewReader("x"), 2)
	assert.ErrorIs(t, r.Err, mediabuf.ErrMIMEBlocked)
}

func TestIngestUploadUpstreamError(t *testing.T) {
	svc := NewMediaService(&fakeUploader{fail: true}, 1<<20)
	r := svc.IngestUpload(context.Background(), 9, domain.PurposeListings, "a.jpg", "image/jpeg", strings.NewReader("ok"), 2)
	assert.Error(t, r.Err)
	assert.Empty(t, r.URL)
}
