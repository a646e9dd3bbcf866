package gateway

import (
	"fmt"
	"net/http"

	"github.com/faithbaptist/manna"
	"github.com/gin-gonic/gin"
)

type bookmarkRequest struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Note    string `json:"note"`
}

func (s *Server) handleListBookmarks(c *gin.Context) {
	bms, err := s.svc.Bookmarks.ListBookmarks(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if bms == nil {
		bms = []manna.Bookmark{}
	}
	c.JSON(http.StatusOK, bms)
}

func (s *Server) handleAddBookmark(c *gin.Context) {
	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %w", manna.ErrValidation, err))
		return
	}
	bm, err := s.svc.Bookmarks.AddBookmark(c.Request.Context(), manna.Bookmark{
		UserID:  identityFrom(c).UserID,
		Book:    req.Book,
		Chapter: req.Chapter,
		Verse:   req.Verse,
		Note:    req.Note,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bm)
}
