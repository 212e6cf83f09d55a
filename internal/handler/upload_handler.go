package handler

import (
	"net/http"

	"sokoni/internal/domain"
	"sokoni/internal/middleware"
	"sokoni/internal/service"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	media *service.MediaService
}

func NewUploadHandler(media *service.MediaService) *UploadHandler {
	return &UploadHandler{media: media}
}

type IngestRequest struct {
	Purpose string   `json:"purpose" binding:"required"`
	Refs    []string `json:"refs" binding:"required,min=1,max=12"`
}

type ingestItem struct {
	Ref      string `json:"ref"`
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename,omitempty"`
	Type     string `json:"type,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Ingest resolves a batch of client refs (data: URIs and durable URLs) to
// storage URLs. Always 200 with per-item outcomes; partial failure is the
// client's signal to retry individual items.
func (h *UploadHandler) Ingest(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	results, err := h.media.Ingest(c.Request.Context(), userID, req.Purpose, req.Refs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out := make([]ingestItem, len(results))
	failed := 0
	for i, r := range results {
		out[i] = ingestItem{
			Ref:      r.Ref,
			URL:      r.URL,
			Filename: r.Filename,
			Type:     r.MediaType,
			Size:     r.Size,
		}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			failed++
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": out, "failed": failed})
}

// UploadFile handles one multipart upload (avatar or chat media).
func (h *UploadHandler) UploadFile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	purpose := c.DefaultPostForm("purpose", domain.PurposeChat)
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	mime := file.Header.Get("Content-Type")
	res := h.media.IngestUpload(c.Request.Context(), userID, purpose, file.Filename, mime, f, file.Size)
	if res.Err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":      res.URL,
		"filename": res.Filename,
		"type":     res.MediaType,
		"size":     res.Size,
	})
}
