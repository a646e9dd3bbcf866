package identity

import (
	"context"
	"time"

	"github.com/faithbaptist/manna"
)

// Interface compliance check.
var _ manna.IdentityProvider = (*Session)(nil)

// Session is a signed-in member's access token and the identity it carries.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Member       *manna.Identity

	// Now defaults to time.Now.
	Now func() time.Time
}

// SessionFromToken builds a Session from a stored access token.
func SessionFromToken(token string) (*Session, error) {
	id, exp, err := FromToken(token)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, ExpiresAt: exp, Member: id}, nil
}

// Identity returns the member while the session is valid.
func (s *Session) Identity(context.Context) (*manna.Identity, error) {
	if s == nil || s.Member == nil || s.AccessToken == "" {
		return nil, manna.ErrSignedOut
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if !s.ExpiresAt.IsZero() && !now().Before(s.ExpiresAt) {
		return nil, manna.ErrSignedOut
	}
	return s.Member, nil
}
