package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/storage"
	"github.com/newsdesk/newsdesk/pkg/middleware"
)

// multipartSlack covers the form boundary and headers around the file.
const multipartSlack = 64 << 10

type UploadHandler struct {
	uploader *storage.Uploader
}

func NewUploadHandler(u *storage.Uploader) *UploadHandler {
	return &UploadHandler{uploader: u}
}

func (h *UploadHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/upload", middleware.RequireAuth(), h.Upload)
}

func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploader.MaxBytes()+multipartSlack)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(c, apperr.TooLarge("file exceeds the upload limit"))
			return
		}
		fail(c, apperr.BadRequest("multipart field \"file\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	defer f.Close()

	out, err := h.uploader.Upload(c.Request.Context(), f, fh.Size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
