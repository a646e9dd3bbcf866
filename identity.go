package manna

import (
	"context"
	"fmt"
)

// MemberRole is a congregation member's privilege level.
type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRolePastor MemberRole = "pastor"
	MemberRoleAdmin  MemberRole = "admin"
)

// Rank orders roles: member < pastor < admin. Unknown roles rank zero.
func (r MemberRole) Rank() int {
	switch r {
	case MemberRoleMember:
		return 1
	case MemberRolePastor:
		return 2
	case MemberRoleAdmin:
		return 3
	default:
		return 0
	}
}

// ParseMemberRole validates a role name.
func ParseMemberRole(s string) (MemberRole, error) {
	r := MemberRole(s)
	if r.Rank() == 0 {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
	return r, nil
}

// HighestRole returns the highest-ranked known role, or member when none is.
func HighestRole(roles []MemberRole) MemberRole {
	best := MemberRoleMember
	for _, r := range roles {
		if r.Rank() > best.Rank() {
			best = r
		}
	}
	return best
}

// Identity is the signed-in member.
type Identity struct {
	UserID   string
	Email    string
	FullName string
	Role     MemberRole
}

// Authorize checks that id is signed in with at least role min.
func Authorize(id *Identity, min MemberRole) error {
	if id == nil {
		return ErrSignedOut
	}
	if id.Role.Rank() < min.Rank() {
		return fmt.Errorf("%w: %s required", ErrForbidden, min)
	}
	return nil
}

// IdentityProvider resolves the current session. It returns ErrSignedOut when
// no one is signed in.
type IdentityProvider interface {
	Identity(ctx context.Context) (*Identity, error)
}
