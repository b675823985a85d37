package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestKeyFormat(t *testing.T) {
	k := Key(time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC), ".png")
	assert.Regexp(t, regexp.MustCompile(`^uploads/2026/03/[0-9a-f-]{36}\.png$`), k)
}

func TestUploadStoresImage(t *testing.T) {
	mem := NewMemoryStorage("http://cdn.test")
	u := NewUploader(mem, 1024)
	u.now = func() time.Time { return time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC) }
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 100)...)

	got, err := u.Upload(context.Background(), bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", got.ContentType)
	assert.Contains(t, got.Key, "uploads/2025/12/")
	assert.Equal(t, "http://cdn.test/"+got.Key, got.URL)
	assert.Equal(t, "image/png", mem.ContentType(got.Key))

	rc, err := mem.Open(context.Background(), got.Key)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, body, stored, "sniffed bytes are written too")
}

func TestUploadRejects(t *testing.T) {
	u := NewUploader(NewMemoryStorage(""), 64)
	ctx := context.Background()

	text := []byte("hello, not an image")
	_, err := u.Upload(ctx, bytes.NewReader(text), int64(len(text)))
	assert.True(t, apperr.Is(err, http.StatusBadRequest))

	_, err = u.Upload(ctx, bytes.NewReader(make([]byte, 65)), 65)
	assert.True(t, apperr.Is(err, http.StatusRequestEntityTooLarge))

	_, err = u.Upload(ctx, bytes.NewReader(nil), 0)
	assert.True(t, apperr.Is(err, http.StatusBadRequest))

	_, err = NewUploader(nil, 0).Upload(ctx, bytes.NewReader(pngHeader), int64(len(pngHeader)))
	assert.True(t, apperr.Is(err, http.StatusServiceUnavailable))
}

func TestMemoryOpenMissing(t *testing.T) {
	_, err := NewMemoryStorage("").Open(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
