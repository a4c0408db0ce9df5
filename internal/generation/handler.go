package generation

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"createkit-backend/internal/shared/server/middleware"
	"createkit-backend/internal/shared/server/respond"
)

const (
	defaultMaxUpload = 5 << 20
	// multipart framing and text fields on top of the file itself
	formOverhead = 1 << 20
)

// Handler wires the /api/ai routes to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. Uploaded files larger than maxUpload are rejected.
func NewHandler(svc *Service, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUpload}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate-article", h.generateArticle)
	rg.POST("/generate-blog-title", h.generateBlogTitle)
	rg.POST("/generate-image", h.generateImage)
	rg.POST("/remove-image-background", h.removeBackground)
	rg.POST("/remove-image-object", h.removeObject)
	rg.POST("/resume-review", h.reviewResume)
}

func (h *Handler) generateArticle(c *gin.Context) {
	c.Set("creationType", "article")
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	article, err := h.Svc.GenerateArticle(c.Request.Context(), middleware.PrincipalFromContext(c), ArticleInput{
		Prompt: req.Prompt,
		Length: req.length(),
	})
	if err != nil {
		respond.Fail(c, err, msgArticleFailed)
		return
	}
	respond.OK(c, articleResponse{Success: true, Article: article})
}

func (h *Handler) generateBlogTitle(c *gin.Context) {
	c.Set("creationType", "blog-title")
	var req blogTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	title, err := h.Svc.GenerateBlogTitle(c.Request.Context(), middleware.PrincipalFromContext(c), req.Prompt)
	if err != nil {
		respond.Fail(c, err, msgBlogTitleFailed)
		return
	}
	respond.OK(c, blogTitleResponse{Success: true, BlogTitle: title})
}

func (h *Handler) generateImage(c *gin.Context) {
	c.Set("creationType", "image")
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	url, err := h.Svc.GenerateImage(c.Request.Context(), middleware.PrincipalFromContext(c), ImageInput{
		Prompt:  req.Prompt,
		Publish: req.Publish,
	})
	if err != nil {
		respond.Fail(c, err, msgImageFailed)
		return
	}
	respond.OK(c, imageResponse{Success: true, ImageURL: url})
}

func (h *Handler) removeBackground(c *gin.Context) {
	c.Set("creationType", "image")
	file, ok := h.readUpload(c, "image", msgNoImage, "Image")
	if !ok {
		return
	}

	url, err := h.Svc.RemoveBackground(c.Request.Context(), middleware.PrincipalFromContext(c), file)
	if err != nil {
		respond.Fail(c, err, msgBackgroundFailed)
		return
	}
	respond.OK(c, imageResponse{Success: true, ImageURL: url})
}

func (h *Handler) removeObject(c *gin.Context) {
	c.Set("creationType", "image")
	file, ok := h.readUpload(c, "image", msgNoImage, "Image")
	if !ok {
		return
	}

	url, err := h.Svc.RemoveObject(c.Request.Context(), middleware.PrincipalFromContext(c), file, c.PostForm("object"))
	if err != nil {
		respond.Fail(c, err, msgObjectFailed)
		return
	}
	respond.OK(c, imageResponse{Success: true, ImageURL: url})
}

func (h *Handler) reviewResume(c *gin.Context) {
	c.Set("creationType", "resume-review")
	file, ok := h.readUpload(c, "resume", msgNoResume, "Resume")
	if !ok {
		return
	}

	content, err := h.Svc.ReviewResume(c.Request.Context(), middleware.PrincipalFromContext(c), file)
	if err != nil {
		respond.Fail(c, err, msgResumeFailed)
		return
	}
	respond.OK(c, contentResponse{Success: true, Content: content})
}

// readUpload buffers the named multipart file in memory. It writes the
// 400 response itself and reports false when the file is missing or too big.
func (h *Handler) readUpload(c *gin.Context, field, missingMsg, label string) (Upload, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+formOverhead)

	fileHeader, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, h.tooLargeMessage(label))
			return Upload{}, false
		}
		respond.Error(c, http.StatusBadRequest, missingMsg)
		return Upload{}, false
	}
	if fileHeader.Size > h.MaxUploadBytes {
		respond.Error(c, http.StatusBadRequest, h.tooLargeMessage(label))
		return Upload{}, false
	}

	data, err := readAll(fileHeader)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, missingMsg)
		return Upload{}, false
	}
	if len(data) == 0 {
		respond.Error(c, http.StatusBadRequest, missingMsg)
		return Upload{}, false
	}
	return Upload{
		FileName: fileHeader.Filename,
		MimeType: strings.TrimSpace(fileHeader.Header.Get("Content-Type")),
		Data:     data,
	}, true
}

func (h *Handler) tooLargeMessage(label string) string {
	return fmt.Sprintf("%s file size exceeds %s limit.", label, humanSize(h.MaxUploadBytes))
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%dB", n)
}
