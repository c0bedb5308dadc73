package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/astravon/portal/core/user"
	"github.com/astravon/portal/tests"
)

func TestNewUser_Validate(t *testing.T) {
	svc, repo, _ := setup(t)
	validate, translator := testutil.NewValidator()
	testutil.CreateUser(t, repo, "Grace", "Hopper", "grace@example.com", "", nil, true)

	valid := func(mod func(nu *user.NewUser)) user.NewUser {
		nu := user.NewUser{FirstName: "Ada", LastName: "Lovelace", Mail: "ada@example.com", Password: "Engine-1843!"}
		if mod != nil {
			mod(&nu)
		}
		return nu
	}

	tests := []struct {
		name      string
		nu        user.NewUser
		wantField string
		wantMsg   string
	}{
		{name: "valid", nu: valid(nil)},
		{name: "short first name", nu: valid(func(nu *user.NewUser) { nu.FirstName = "A" }), wantField: "firstName"},
		{name: "invalid mail", nu: valid(func(nu *user.NewUser) { nu.Mail = "ada" }), wantField: "mail"},
		{name: "invalid role", nu: valid(func(nu *user.NewUser) { nu.Roles = []string{"lol"} }), wantField: "roles", wantMsg: "invalid roles"},
		{name: "short password", nu: valid(func(nu *user.NewUser) { nu.Password = "Ab1!" }), wantField: "password", wantMsg: "password must contain at least 8 characters"},
		{name: "password with space", nu: valid(func(nu *user.NewUser) { nu.Password = "Engine 1843!" }), wantField: "password", wantMsg: "password must not contain whitespace"},
		{name: "numeric password", nu: valid(func(nu *user.NewUser) { nu.Password = "18431843" }), wantField: "password", wantMsg: "password cannot be entirely numeric"},
		{name: "simple password", nu: valid(func(nu *user.NewUser) { nu.Password = "engineengine" }), wantField: "password"},
		{name: "similar password", nu: valid(func(nu *user.NewUser) { nu.Password = "Lovelace1!" }), wantField: "password", wantMsg: "password cannot be similar to user attributes"},
		{name: "common password", nu: valid(func(nu *user.NewUser) { nu.Password = "P@ssw0rd" }), wantField: "password", wantMsg: "password is too common"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := tt.nu
			err := nu.Validate(context.Background(), validate, svc)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error = %v", err)
				}
				return
			}
			verrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("Validate() error = %v, want validator.ValidationErrors", err)
			}
			found := false
			for _, fe := range verrs {
				if fe.Field() == tt.wantField {
					found = true
					if tt.wantMsg != "" && fe.Translate(translator) != tt.wantMsg {
						t.Errorf("Validate() message = %q, want %q", fe.Translate(translator), tt.wantMsg)
					}
				}
			}
			if !found {
				t.Errorf("Validate() errors = %v, want field %s", verrs, tt.wantField)
			}
		})
	}

	t.Run("mail taken", func(t *testing.T) {
		nu := valid(func(nu *user.NewUser) { nu.Mail = " GRACE@example.com" })
		if err := nu.Validate(context.Background(), validate, svc); err == nil {
			t.Error("Validate() expected a uniqueness error")
		}
	})
}
