package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/astravon/portal/core/session"
	"github.com/astravon/portal/core/user"
)

func TestGuard_Authorize(t *testing.T) {
	guard := session.NewGuard("admin@example.com")

	member := &user.Profile{ID: 1, FirstName: "Ana", Mail: "a@b.com", Roles: []string{user.RoleMember}}
	roleAdmin := &user.Profile{ID: 2, FirstName: "Ola", Mail: "ola@b.com", Roles: []string{user.RoleAdminOwner}}
	mailAdmin := &user.Profile{ID: 3, FirstName: "Root", Mail: "admin@example.com"}
	spacedAdmin := &user.Profile{ID: 4, FirstName: "Root", Mail: "  Admin@Example.COM "}

	denied := session.Decision{Redirect: session.RootPath}
	deniedReplace := session.Decision{Redirect: session.RootPath, Replace: true}
	allowed := session.Decision{Allowed: true}

	tests := []struct {
		name string
		sess session.Session
		cap  session.Capability
		want session.Decision
	}{
		{name: "anonymous: none", cap: session.None, want: allowed},
		{name: "anonymous: authenticated", cap: session.Authenticated, want: denied},
		{name: "anonymous: adminOnly", cap: session.AdminOnly, want: denied},
		{name: "flag without user", sess: session.Session{IsAuthenticated: true}, cap: session.Authenticated, want: denied},
		{name: "user without flag", sess: session.Session{User: member}, cap: session.Authenticated, want: denied},
		{name: "member: authenticated", sess: session.Session{IsAuthenticated: true, User: member}, cap: session.Authenticated, want: allowed},
		{name: "member: adminOnly", sess: session.Session{IsAuthenticated: true, User: member}, cap: session.AdminOnly, want: deniedReplace},
		{name: "admin role: adminOnly", sess: session.Session{IsAuthenticated: true, User: roleAdmin}, cap: session.AdminOnly, want: allowed},
		{name: "admin mail: adminOnly", sess: session.Session{IsAuthenticated: true, User: mailAdmin}, cap: session.AdminOnly, want: allowed},
		{name: "admin mail (case & spaces): adminOnly", sess: session.Session{IsAuthenticated: true, User: spacedAdmin}, cap: session.AdminOnly, want: allowed},
		{name: "admin mail: authenticated", sess: session.Session{IsAuthenticated: true, User: mailAdmin}, cap: session.Authenticated, want: allowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := guard.Authorize(tt.sess, tt.cap)
			assert.Equal(t, tt.want, got)
			// same inputs, same answer
			assert.Equal(t, got, guard.Authorize(tt.sess, tt.cap))
		})
	}
}

func TestGuard_noAdminMails(t *testing.T) {
	guard := session.NewGuard()
	sess := session.Session{IsAuthenticated: true, User: &user.Profile{Mail: "admin@example.com"}}

	assert.False(t, guard.Authorize(sess, session.AdminOnly).Allowed)
	assert.False(t, guard.IsAdmin(nil))
}

func TestCapability_String(t *testing.T) {
	assert.Equal(t, "none", session.None.String())
	assert.Equal(t, "authenticated", session.Authenticated.String())
	assert.Equal(t, "adminOnly", session.AdminOnly.String())
}
