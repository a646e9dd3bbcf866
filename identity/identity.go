// Package identity resolves signed-in church members.
//
// Access tokens are HS256 JWTs issued by the backend's auth service. The
// gateway verifies them with [Verifier]; the chat client signs in with
// [Client] and reads the same claims with [FromToken].
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/faithbaptist/manna"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access token claims the backend issues.
type Claims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata,omitzero"`
	UserRole     string       `json:"user_role,omitempty"`
}

// UserMetadata is the profile data carried in the token.
type UserMetadata struct {
	FullName string `json:"full_name,omitempty"`
}

// Identity maps the claims to a member. An unknown or missing role is
// treated as member.
func (c *Claims) Identity() *manna.Identity {
	role, err := manna.ParseMemberRole(c.UserRole)
	if err != nil {
		role = manna.MemberRoleMember
	}
	return &manna.Identity{
		UserID:   c.Subject,
		Email:    c.Email,
		FullName: c.UserMetadata.FullName,
		Role:     role,
	}
}

// Sign issues an HS256 access token for id that expires at exp.
func Sign(secret []byte, id *manna.Identity, exp time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email:        id.Email,
		UserMetadata: UserMetadata{FullName: id.FullName},
		UserRole:     string(id.Role),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("identity: sign: %w", err)
	}
	return token, nil
}

// FromToken reads the identity and expiry from token without verifying its
// signature. The client uses it to learn who it signed in as; the gateway
// never trusts it.
func FromToken(token string) (*manna.Identity, time.Time, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %w", manna.ErrSignedOut, err)
	}
	if claims.Subject == "" {
		return nil, time.Time{}, fmt.Errorf("%w: token has no subject", manna.ErrSignedOut)
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return claims.Identity(), exp, nil
}

// Verifier checks access tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier creates a Verifier for secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Verify validates token and returns the member it was issued to. Invalid
// or expired tokens wrap [manna.ErrSignedOut].
func (v *Verifier) Verify(token string) (*manna.Identity, error) {
	if token == "" {
		return nil, manna.ErrSignedOut
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: session expired", manna.ErrSignedOut)
		}
		return nil, fmt.Errorf("%w: %w", manna.ErrSignedOut, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", manna.ErrSignedOut)
	}
	return claims.Identity(), nil
}
