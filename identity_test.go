package manna_test

import (
	"testing"

	"github.com/faithbaptist/manna"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      *manna.Identity
		min     manna.MemberRole
		wantErr error
	}{
		{"signed out", nil, manna.MemberRoleMember, manna.ErrSignedOut},
		{"member may chat", &manna.Identity{Role: manna.MemberRoleMember}, manna.MemberRoleMember, nil},
		{"member may not publish", &manna.Identity{Role: manna.MemberRoleMember}, manna.MemberRolePastor, manna.ErrForbidden},
		{"pastor may publish", &manna.Identity{Role: manna.MemberRolePastor}, manna.MemberRolePastor, nil},
		{"admin outranks pastor", &manna.Identity{Role: manna.MemberRoleAdmin}, manna.MemberRolePastor, nil},
		{"unknown role is rejected", &manna.Identity{Role: "guest"}, manna.MemberRoleMember, manna.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := manna.Authorize(tt.id, tt.min)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHighestRole(t *testing.T) {
	t.Parallel()
	assert.Equal(t, manna.MemberRoleMember, manna.HighestRole(nil))
	assert.Equal(t, manna.MemberRolePastor, manna.HighestRole([]manna.MemberRole{"member", "pastor"}))
	assert.Equal(t, manna.MemberRoleAdmin, manna.HighestRole([]manna.MemberRole{"admin", "pastor", "member"}))
	assert.Equal(t, manna.MemberRoleMember, manna.HighestRole([]manna.MemberRole{"deacon"}))
}

func TestParseMemberRole(t *testing.T) {
	t.Parallel()
	r, err := manna.ParseMemberRole("pastor")
	require.NoError(t, err)
	assert.Equal(t, manna.MemberRolePastor, r)

	_, err = manna.ParseMemberRole("bishop")
	assert.ErrorIs(t, err, manna.ErrValidation)
}
