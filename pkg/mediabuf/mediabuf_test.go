package mediabuf

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, SchemeData, Classify("data:image/png;base64,AAAA"))
	assert.Equal(t, SchemeBlob, Classify("blob:https://app/0d1f"))
	assert.Equal(t, SchemeHTTP, Classify("https://res.cloudinary.com/x/image.webp"))
	assert.Equal(t, SchemeHTTP, Classify("http://example.com/a.jpg"))
	assert.Equal(t, SchemeUnknown, Classify("file:///tmp/x.png"))
	assert.Equal(t, SchemeUnknown, Classify("whatever"))
}

func TestParseDataURI(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G'}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	mime, data, err := ParseDataURI(uri, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, raw, data)
}

func TestParseDataURIErrors(t *testing.T) {
	_, _, err := ParseDataURI("https://example.com/a.png", 0)
	assert.ErrorIs(t, err, ErrNotDataURI)

	_, _, err = ParseDataURI("data:image/png;base64", 0)
	assert.ErrorIs(t, err, ErrBadEncoding)

	_, _, err = ParseDataURI("data:image/png;base64,!!notbase64!!", 0)
	assert.ErrorIs(t, err, ErrBadEncoding)
}

func TestParseDataURISizeCap(t *testing.T) {
	big := make([]byte, 1024)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(big)
	_, _, err := ParseDataURI(uri, 512)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, data, err := ParseDataURI(uri, 2048)
	require.NoError(t, err)
	assert.Len(t, data, 1024)
}

func TestMediaType(t *testing.T) {
	mt, ok := MediaType("image/jpeg")
	require.True(t, ok)
	assert.Equal(t, "IMAGE", mt)

	mt, ok = MediaType("video/mp4")
	require.True(t, ok)
	assert.Equal(t, "VIDEO", mt)

	_, ok = MediaType("application/pdf")
	assert.False(t, ok)
	_, ok = MediaType("image/svg+xml")
	assert.False(t, ok)
}
