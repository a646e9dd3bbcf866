package gateway

import (
	"fmt"
	"net/http"

	"github.com/faithbaptist/manna"
	"github.com/gin-gonic/gin"
)

type contentRequest struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	VerseReference string `json:"verse_reference"`
	MediaURL       string `json:"media_url"`
	Pinned         bool   `json:"is_pinned"`
}

type pinRequest struct {
	Pinned *bool `json:"is_pinned"`
}

func (s *Server) handleListContent(c *gin.Context) {
	kind, err := manna.ParseContentKind(c.Param("kind"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	items, err := s.svc.Content.ListContent(c.Request.Context(), kind)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if items == nil {
		items = []manna.ContentItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) handleCreateContent(c *gin.Context) {
	kind, err := manna.ParseContentKind(c.Param("kind"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %w", manna.ErrValidation, err))
		return
	}
	item, err := s.svc.Content.CreateContent(c.Request.Context(), manna.ContentItem{
		Kind:           kind,
		Title:          req.Title,
		Body:           req.Content,
		VerseReference: req.VerseReference,
		MediaURL:       req.MediaURL,
		Pinned:         req.Pinned,
		AuthorID:       identityFrom(c).UserID,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) handlePinContent(c *gin.Context) {
	kind, err := manna.ParseContentKind(c.Param("kind"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req pinRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Pinned == nil {
		s.writeError(c, fmt.Errorf("%w: is_pinned is required", manna.ErrValidation))
		return
	}
	if err := s.svc.Content.SetPinned(c.Request.Context(), kind, c.Param("id"), *req.Pinned); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
