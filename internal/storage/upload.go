package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/pkg/logger"
)

// DefaultMaxBytes applies when no upload limit is configured.
const DefaultMaxBytes = 5 << 20

// allowedTypes maps sniffed image types to the stored extension.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Uploaded describes a stored upload.
type Uploaded struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Uploader validates images and writes them to a Blob.
type Uploader struct {
	blob     Blob
	maxBytes int64
	now      func() time.Time
}

func NewUploader(b Blob, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Uploader{blob: b, maxBytes: maxBytes, now: time.Now}
}

func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

// Key builds uploads/<yyyy>/<mm>/<uuid><ext>.
func Key(t time.Time, ext string) string {
	t = t.UTC()
	return fmt.Sprintf("uploads/%04d/%02d/%s%s", t.Year(), int(t.Month()), uuid.NewString(), ext)
}

// Upload sniffs the content type from the first bytes rather than trusting
// the client and stores r under a fresh key.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, size int64) (*Uploaded, error) {
	if u.blob == nil {
		return nil, apperr.Unavailable("uploads are not configured")
	}
	if size > u.maxBytes {
		return nil, apperr.TooLarge(fmt.Sprintf("file exceeds %d bytes", u.maxBytes))
	}
	if size == 0 {
		return nil, apperr.BadRequest("file is empty")
	}
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, apperr.BadRequest("cannot read file")
	}
	contentType := http.DetectContentType(head)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, apperr.Validation("unsupported file type", map[string]string{"file": "must be a jpeg, png, gif or webp image"})
	}
	key := Key(u.now(), ext)
	if err := u.blob.Put(ctx, key, br, size, contentType); err != nil {
		return nil, apperr.BadGateway("store upload", err)
	}
	link, err := u.blob.URL(ctx, key)
	if err != nil {
		return nil, apperr.BadGateway("build upload url", err)
	}
	logger.Infof("upload stored key=%s type=%s size=%d", key, contentType, size)
	return &Uploaded{Key: key, URL: link, ContentType: contentType, Size: size}, nil
}
