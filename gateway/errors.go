package gateway

import (
	"errors"
	"net/http"

	"github.com/faithbaptist/manna"
	"github.com/gin-gonic/gin"
)

// Messages returned for upstream quota failures.
const (
	RateLimitedMessage = "Rate limit exceeded. Please try again later."
	NoCreditsMessage   = "AI credits exhausted."
)

// errorStatus maps an error to the status and message sent to the caller.
func errorStatus(err error) (int, string) {
	var tErr *manna.TransportError
	switch {
	case errors.As(err, &tErr):
		switch tErr.StatusCode {
		case http.StatusTooManyRequests:
			return http.StatusTooManyRequests, RateLimitedMessage
		case http.StatusPaymentRequired:
			return http.StatusPaymentRequired, NoCreditsMessage
		}
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, manna.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, manna.ErrSignedOut):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, manna.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, manna.ErrNotFound):
		return http.StatusNotFound, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
