package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/faithbaptist/manna"
	"github.com/rs/zerolog"
	"resty.dev/v3"
)

// Client talks to the backend's auth and REST endpoints.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
	now    func() time.Time
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = resty.NewWithClient(hc) }
}

// WithLogger sets the logger for role lookup fallbacks.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = l.With().Str("component", "identity").Logger() }
}

// NewClient creates a Client for the backend at baseURL. anonKey is the
// public API key sent with every request.
func NewClient(baseURL, anonKey string, opts ...ClientOption) *Client {
	c := &Client{http: resty.New(), logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.http.
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("apikey", anonKey).
		SetTimeout(30 * time.Second)
	return c
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID           string       `json:"id"`
		Email        string       `json:"email"`
		UserMetadata UserMetadata `json:"user_metadata"`
	} `json:"user"`
}

type authError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e *authError) text() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	default:
		return e.Error
	}
}

// SignIn exchanges email and password for a session and resolves the
// member's role. Rejected credentials wrap [manna.ErrSignedOut].
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var tok tokenResponse
	var aErr authError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&tok).
		SetError(&aErr).
		Post("/auth/v1/token")
	if err != nil {
		return nil, fmt.Errorf("identity: sign in: %w", err)
	}
	if resp.IsError() {
		msg := aErr.text()
		if msg == "" {
			msg = resp.Status()
		}
		if resp.StatusCode() == http.StatusBadRequest || resp.StatusCode() == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", manna.ErrSignedOut, msg)
		}
		return nil, &manna.TransportError{StatusCode: resp.StatusCode(), Message: msg}
	}

	s := &Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Member: &manna.Identity{
			UserID:   tok.User.ID,
			Email:    tok.User.Email,
			FullName: tok.User.UserMetadata.FullName,
		},
	}
	if tok.ExpiresIn > 0 {
		s.ExpiresAt = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	s.Member.Role, err = c.Role(ctx, s)
	if err != nil {
		c.logger.Warn().Err(err).Str("user_id", s.Member.UserID).Msg("role lookup failed, using member")
	}
	return s, nil
}

// Role resolves the member's role through the get_user_role function,
// falling back to the highest row of user_roles. It returns member when
// neither yields a role; the error reports a failed fallback.
func (c *Client) Role(ctx context.Context, s *Session) (manna.MemberRole, error) {
	var role string
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(s.AccessToken).
		SetBody(map[string]string{"_user_id": s.Member.UserID}).
		SetResult(&role).
		Post("/rest/v1/rpc/get_user_role")
	if err == nil && !resp.IsError() {
		if r, perr := manna.ParseMemberRole(role); perr == nil {
			return r, nil
		}
	}

	var rows []struct {
		Role string `json:"role"`
	}
	resp, err = c.http.R().
		SetContext(ctx).
		SetAuthToken(s.AccessToken).
		SetQueryParam("select", "role").
		SetQueryParam("user_id", "eq."+s.Member.UserID).
		SetResult(&rows).
		Get("/rest/v1/user_roles")
	if err != nil {
		return manna.MemberRoleMember, fmt.Errorf("identity: user roles: %w", err)
	}
	if resp.IsError() {
		return manna.MemberRoleMember, &manna.TransportError{StatusCode: resp.StatusCode(), Message: resp.String()}
	}
	roles := make([]manna.MemberRole, 0, len(rows))
	for _, r := range rows {
		roles = append(roles, manna.MemberRole(r.Role))
	}
	return manna.HighestRole(roles), nil
}
