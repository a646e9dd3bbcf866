package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/faithbaptist/manna"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// authenticate verifies a bearer token when one is present. Requests without
// a token continue anonymously; routes that need a member reject them in
// authorize.
func (s *Server) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.Next()
		return
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
		return
	}
	id, err := s.svc.Verifier.Verify(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("token rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	c.Set(identityKey, id)
	c.Next()
}

// authorize wraps h so it runs only for members holding at least min.
func (s *Server) authorize(min manna.MemberRole, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := manna.Authorize(identityFrom(c), min); err != nil {
			s.writeError(c, err)
			return
		}
		h(c)
	}
}

func identityFrom(c *gin.Context) *manna.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*manna.Identity)
	return id
}

// observe logs each request and records its metrics. Aborted streams are
// recorded before the abort propagates, with status "aborted".
func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	defer func() {
		rec := recover()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		switch {
		case rec == http.ErrAbortHandler:
			status = "aborted"
		case rec != nil:
			status = strconv.Itoa(http.StatusInternalServerError)
		}
		elapsed := time.Since(start)

		s.metrics.RequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		s.metrics.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		evt := s.logger.Info()
		if rec != nil || c.Writer.Status() >= http.StatusInternalServerError {
			evt = s.logger.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("route", route).
			Str("status", status).
			Dur("elapsed", elapsed).
			Msg("request")

		if rec != nil {
			panic(rec)
		}
	}()
	c.Next()
}

func (s *Server) recover(c *gin.Context, rec any) {
	if rec == http.ErrAbortHandler {
		panic(rec)
	}
	s.logger.Error().Interface("panic", rec).Str("route", c.FullPath()).Msg("handler panicked")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
