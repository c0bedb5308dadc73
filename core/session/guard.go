package session

import (
	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/user"
)

// RootPath is where denied navigations are sent.
const RootPath = "/"

// Capability is the access level a view or an endpoint requires.
type Capability int

const (
	None Capability = iota
	Authenticated
	AdminOnly
)

func (c Capability) String() string {
	switch c {
	case None:
		return "none"
	case Authenticated:
		return "authenticated"
	case AdminOnly:
		return "adminOnly"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a guard evaluation.
// Replace asks the navigator to replace the current history entry rather than push a new one.
type Decision struct {
	Allowed  bool
	Redirect string
	Replace  bool
}

var allow = Decision{Allowed: true}

// Guard decides whether a session may reach a capability level.
// Admins are users with an "admin:" role, or whose mail is one of the configured admin mails.
type Guard struct {
	adminMails []string
}

func NewGuard(adminMails ...string) Guard {
	mails := make([]string, 0, len(adminMails))
	for _, m := range adminMails {
		if m = core.CleanString(m, true /* lower */); m != "" {
			mails = append(mails, m)
		}
	}
	return Guard{adminMails: mails}
}

// IsAdmin reports whether the user record grants admin access.
func (g Guard) IsAdmin(p *user.Profile) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	for _, m := range g.adminMails {
		if core.SameMail(m, p.Mail) {
			return true
		}
	}
	return false
}

// Authorize evaluates the session against the required capability.
// It performs no I/O and its result depends only on its inputs.
func (g Guard) Authorize(s Session, c Capability) Decision {
	if c == None {
		return allow
	}
	if !s.Valid() {
		return Decision{Redirect: RootPath}
	}
	if c == AdminOnly && !g.IsAdmin(s.User) {
		return Decision{Redirect: RootPath, Replace: true}
	}
	return allow
}
