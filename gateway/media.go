package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/faithbaptist/manna"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// MediaPrefix is the route prefix for media attachments. Content items refer
// to an upload by the URL returned from the upload route.
const MediaPrefix = "/storage/v1/media"

// MaxMediaBytes caps the size of one upload.
const MaxMediaBytes = 10 << 20

type mediaResponse struct {
	Path     string `json:"path"`
	MediaURL string `json:"media_url"`
}

func mediaPath(c *gin.Context) (string, error) {
	p := strings.TrimPrefix(c.Param("path"), "/")
	if p == "" || strings.HasSuffix(p, "/") {
		return "", fmt.Errorf("%w: media path is required", manna.ErrValidation)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: invalid media path %q", manna.ErrValidation, p)
		}
	}
	return p, nil
}

func (s *Server) handlePutMedia(c *gin.Context) {
	p, err := mediaPath(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxMediaBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("media exceeds %d bytes", MaxMediaBytes)})
			return
		}
		s.writeError(c, fmt.Errorf("%w: read body: %w", manna.ErrValidation, err))
		return
	}
	if len(data) == 0 {
		s.writeError(c, fmt.Errorf("%w: media body is empty", manna.ErrValidation))
		return
	}
	if mime := mimetype.Detect(data).String(); !allowedMedia(mime) {
		s.writeError(c, fmt.Errorf("%w: unsupported media type %s", manna.ErrValidation, mime))
		return
	}
	if err := s.svc.Media.PutMedia(c.Request.Context(), p, data); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mediaResponse{Path: p, MediaURL: MediaPrefix + "/" + p})
}

func (s *Server) handleGetMedia(c *gin.Context) {
	p, err := mediaPath(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	data, err := s.svc.Media.Media(c.Request.Context(), p)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}

// allowedMedia reports whether mime is an image, audio or video type.
func allowedMedia(mime string) bool {
	for _, prefix := range []string{"image/", "audio/", "video/"} {
		if strings.HasPrefix(mime, prefix) {
			return true
		}
	}
	return false
}
