package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/astravon/portal/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Member
	RoleMember = "member:"
)

var (
	AdminRoles  = []string{RoleAdmin, RoleAdminOwner}
	MemberRoles = []string{RoleMember}
	AllRoles    = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Members: 10 - 1
		RoleMember: 1,
	}

	Roles = []Role{
		{Name: "Member", Value: RoleMember},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, len(AdminRoles)+len(MemberRoles))
	all = append(all, AdminRoles...)
	all = append(all, MemberRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

// HasAdminRole reports whether one of roles belongs to the admin family.
func HasAdminRole(roles []string) bool {
	for _, role := range roles {
		if strings.HasPrefix(role, RoleAdmin) {
			return true
		}
	}
	return false
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           int       `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Mail         string    `json:"mail"`
	Roles        []string  `json:"roles"`
	IsVerified   bool      `json:"isVerified"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
	LastLogin    time.Time `json:"lastLogin"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Profile returns the public record a client keeps in its session.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Mail:      u.Mail,
		Roles:     u.Roles,
	}
}

// Profile is the serialized user record stored by clients next to the authentication flag.
type Profile struct {
	ID        int      `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Mail      string   `json:"mail"`
	Roles     []string `json:"roles,omitempty"`
	Token     string   `json:"token,omitempty"`
}

func (p Profile) IsAdmin() bool {
	return HasAdminRole(p.Roles)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FirstName string   `json:"firstName" validate:"required,min=2"`
	LastName  string   `json:"lastName" validate:"required,min=2"`
	Mail      string   `json:"mail" validate:"required,email"`
	Password  string   `json:"password" validate:"required"`
	Roles     []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Mail = core.CleanString(nu.Mail, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Mail)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	FirstName string   `json:"firstName" validate:"omitempty,min=2"`
	LastName  string   `json:"lastName" validate:"omitempty,min=2"`
	Mail      string   `json:"mail" validate:"omitempty,email"`
	Roles     []string `json:"roles" validate:"omitempty,allroles"`
	Password  string   `json:"password" validate:"omitempty"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc Service) error {
	if name := core.CleanString(uu.FirstName); name != "" {
		uu.FirstName = name
	} else {
		uu.FirstName = origUsr.FirstName
	}

	if name := core.CleanString(uu.LastName); name != "" {
		uu.LastName = name
	} else {
		uu.LastName = origUsr.LastName
	}

	if mail := core.CleanString(uu.Mail, true /* lower */); mail != "" {
		uu.Mail = mail
	} else {
		uu.Mail = origUsr.Mail
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Mail, origUsr)
}

// VerifyMail carries a verification code submitted for a mail address.
type VerifyMail struct {
	Mail string `json:"mail" query:"mail" validate:"required,email"`
	Code string `json:"code" query:"code" validate:"required,len=6,numeric"`
}

func (vm *VerifyMail) Validate(validate *validator.Validate) error {
	vm.Mail = core.CleanString(vm.Mail, true /* lower */)
	vm.Code = core.CleanString(vm.Code)
	return validate.Struct(vm)
}
