package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/faithbaptist/manna"
	"github.com/faithbaptist/manna/readingplan"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleListPlans(c *gin.Context) {
	plans := make([]manna.ReadingPlan, 0, len(s.svc.Plans))
	for _, p := range s.svc.Plans {
		if p.Active {
			plans = append(plans, p)
		}
	}
	c.JSON(http.StatusOK, plans)
}

func (s *Server) handlePlanProgress(c *gin.Context) {
	plan, err := readingplan.Find(s.svc.Plans, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	p, err := s.svc.Progress.Progress(c.Request.Context(), identityFrom(c).UserID, plan.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// handleCompleteDay marks a day read, starting the plan on first use.
func (s *Server) handleCompleteDay(c *gin.Context) {
	plan, err := readingplan.Find(s.svc.Plans, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		s.writeError(c, fmt.Errorf("%w: day must be a number", manna.ErrValidation))
		return
	}

	ctx := c.Request.Context()
	userID := identityFrom(c).UserID
	now := s.now()
	p, err := s.svc.Progress.Progress(ctx, userID, plan.ID)
	if errors.Is(err, manna.ErrNotFound) {
		p = manna.NewPlanProgress(userID, plan.ID, now)
	} else if err != nil {
		s.writeError(c, err)
		return
	}

	if err := p.CompleteDay(day, plan.DurationDays, now); err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.svc.Progress.SaveProgress(ctx, p); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
