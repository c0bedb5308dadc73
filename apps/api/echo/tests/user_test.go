package tests

import (
	"context"
	"net/http"
	"regexp"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/astravon/portal/apps/api/echo"
	"github.com/astravon/portal/core/user"
	"github.com/astravon/portal/tests"
)

var codeRegex = regexp.MustCompile(`\b(\d{6})\b`)

func Test_userApi_create(t *testing.T) {
	f := setup(t)
	testutil.CreateUser(t, f.usrRepo, "Taken", "Mail", "taken@example.com", "", nil, true)

	t.Run("valid", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/users", "", marchallObj(t, user.NewUser{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Mail:      " Ada@Example.com ",
			Password:  "Engine-1843!",
			Roles:     []string{user.RoleAdminOwner},
		}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var usr user.User
		decodeData(t, rec, &usr)
		assert.NotZero(t, usr.ID)
		assert.Equal(t, "ada@example.com", usr.Mail)
		assert.Equal(t, []string{user.RoleMember}, usr.Roles, "self registration cannot pick roles")
		assert.NotContains(t, rec.Body.String(), "password")

		sent := f.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "ada@example.com", sent[0].To[0].Address)
	})

	tests := []httpTest{
		{
			name: "mail taken", method: http.MethodPost, path: "/api/users",
			body: marchallObj(t, user.NewUser{
				FirstName: "Other", LastName: "Person", Mail: "TAKEN@example.com", Password: "Engine-1843!",
			}),
			wantCode: http.StatusBadRequest,
			wantData: failure(t, user.ErrMailExists.Error(), map[string]string{"mail": user.ErrMailExists.Error()}),
		},
	}
	f.run(t, tests)

	t.Run("missing mail", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/users", "", marchallObj(t, user.NewUser{
			FirstName: "Other", LastName: "Person", Password: "Engine-1843!",
		}))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"mail":"this field is required"`)
	})

	t.Run("weak password", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/users", "", marchallObj(t, user.NewUser{
			FirstName: "Weak", LastName: "Password", Mail: "weak@example.com", Password: "short",
		}))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"password"`)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	})
}

func Test_userApi_login(t *testing.T) {
	f := setup(t)
	usr := testutil.CreateUser(t, f.usrRepo, "Ada", "Lovelace", "ada@example.com", "Engine-1843!", nil, true)

	t.Run("valid", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/users/login", "", marchallObj(t, echoapi.LoginRequest{
			Mail: "ADA@example.com", Password: "Engine-1843!",
		}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.LoginResponse
		decodeData(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, usr.Profile(), resp.User)

		// the token grants access to authenticated endpoints
		rec = f.do(http.MethodPost, "/api/users/token-refresh", resp.Token)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got, err := f.usrRepo.GetUserByID(context.Background(), usr.ID)
		require.NoError(t, err)
		assert.False(t, got.LastLogin.IsZero())
	})

	tests := []httpTest{
		{
			name: "wrong password", method: http.MethodPost, path: "/api/users/login",
			body:     marchallObj(t, echoapi.LoginRequest{Mail: "ada@example.com", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: failure(t, user.ErrInvalidCredentials.Error()),
		},
		{
			name: "unknown mail", method: http.MethodPost, path: "/api/users/login",
			body:     marchallObj(t, echoapi.LoginRequest{Mail: "nobody@example.com", Password: "Engine-1843!"}),
			wantCode: http.StatusBadRequest,
			wantData: failure(t, user.ErrInvalidCredentials.Error()),
		},
		{
			name: "missing password", method: http.MethodPost, path: "/api/users/login",
			body:     marchallObj(t, echoapi.LoginRequest{Mail: "ada@example.com"}),
			wantCode: http.StatusBadRequest,
			wantData: failure(t, "password: this field is required", map[string]string{"password": "this field is required"}),
		},
	}
	f.run(t, tests)
}

func Test_userApi_verification(t *testing.T) {
	f := setup(t)
	usr := testutil.CreateUser(t, f.usrRepo, "Ada", "Lovelace", "ada@example.com", "", nil, false)

	sentMsg := "If the mail address is associated with an unverified account, a verification code is on its way."
	tests := []httpTest{
		{
			name: "unknown mail", method: http.MethodPost, path: "/api/users/verification/nobody@example.com",
			wantData: envelope(t, sentMsg, nil),
		},
		{
			name: "bad code", path: "/api/users/verification?mail=ada@example.com&code=12ab56",
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown user", path: "/api/users/verification?mail=nobody@example.com&code=123456",
			wantCode: http.StatusBadRequest,
			wantData: failure(t, "invalid verification code", map[string]string{"code": "invalid verification code"}),
		},
	}
	f.run(t, tests)
	assert.Empty(t, f.mailSvc.SentMessages())

	rec := f.do(http.MethodPost, "/api/users/verification/ada@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sent := f.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	match := codeRegex.FindStringSubmatch(sent[0].TextContent)
	require.Len(t, match, 2, "code not found in %q", sent[0].TextContent)

	rec = f.do(http.MethodGet, "/api/users/verification?mail=ada@example.com&code="+match[1], "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := f.usrRepo.GetUserByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
}

func Test_userApi_tokenRefresh(t *testing.T) {
	f := setup(t)
	usr := testutil.CreateUser(t, f.usrRepo, "Ada", "Lovelace", "ada@example.com", "", nil, true)

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/api/users/token-refresh",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "invalid token", method: http.MethodPost, path: "/api/users/token-refresh", token: "not-a-jwt",
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "valid", method: http.MethodPost, path: "/api/users/token-refresh", token: f.getToken(t, usr),
		},
	}
	f.run(t, tests)
}

func Test_userApi_update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ada := testutil.CreateUser(t, f.usrRepo, "Ada", "Lovelace", "ada@example.com", "", nil, true)
	bob := testutil.CreateUser(t, f.usrRepo, "Bob", "Builder", "bob@example.com", "", nil, true)
	admin := testutil.CreateUser(t, f.usrRepo, "Root", "Admin", "root@example.com", "", []string{user.RoleAdmin}, true)
	adaToken := f.getToken(t, ada)

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPut, path: "/api/users/1",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "not self", method: http.MethodPut, path: "/api/users/" + itoa(bob.ID), token: adaToken,
			body: marchallObj(t, user.UpdateUser{FirstName: "Hacked"}), wantCode: http.StatusNotFound,
			wantData: failure(t, "not found"),
		},
		{
			name: "member cannot set roles", method: http.MethodPut, path: "/api/users/" + itoa(ada.ID), token: adaToken,
			body: marchallObj(t, user.UpdateUser{Roles: []string{user.RoleAdmin}}), wantCode: http.StatusForbidden,
			wantData: failure(t, "permission denied"),
		},
		{
			name: "admin cannot exceed own role", method: http.MethodPut, path: "/api/users/" + itoa(bob.ID),
			token: f.getToken(t, admin), body: marchallObj(t, user.UpdateUser{Roles: []string{user.RoleAdminOwner}}),
			wantCode: http.StatusBadRequest,
		},
	}
	f.run(t, tests)

	rec := f.do(http.MethodPut, "/api/users/"+itoa(ada.ID), adaToken, marchallObj(t, user.UpdateUser{FirstName: "Augusta"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got user.User
	decodeData(t, rec, &got)
	assert.Equal(t, "Augusta", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)

	rec = f.do(http.MethodPut, "/api/users/"+itoa(bob.ID), f.getToken(t, admin), marchallObj(t, user.UpdateUser{
		Roles: []string{user.RoleAdmin},
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bob, err := f.usrRepo.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{user.RoleAdmin}, bob.Roles)
}

func Test_userApi_destroy(t *testing.T) {
	f := setup(t)
	ada := testutil.CreateUser(t, f.usrRepo, "Ada", "Lovelace", "ada@example.com", "", nil, true)
	bob := testutil.CreateUser(t, f.usrRepo, "Bob", "Builder", "bob@example.com", "", nil, true)
	// admin through the configured admin mails, not a role
	admin := testutil.CreateUser(t, f.usrRepo, "Root", "Admin", "admin@example.com", "", nil, true)

	tests := []httpTest{
		{
			name: "not self", method: http.MethodDelete, path: "/api/users/" + itoa(bob.ID), token: f.getToken(t, ada),
			wantCode: http.StatusNotFound,
		},
		{
			name: "self", method: http.MethodDelete, path: "/api/users/" + itoa(ada.ID), token: f.getToken(t, ada),
			wantData: envelope(t, "user deleted", nil),
		},
		{
			name: "admin", method: http.MethodDelete, path: "/api/users/" + itoa(bob.ID), token: f.getToken(t, admin),
			wantData: envelope(t, "user deleted", nil),
		},
	}
	f.run(t, tests)

	for _, id := range []int{ada.ID, bob.ID} {
		_, err := f.usrRepo.GetUserByID(context.Background(), id)
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	}
}

func Test_userApi_routeGuards(t *testing.T) {
	f := setup(t)
	ada := testutil.CreateUser(t, f.usrRepo, "Ada", "Lovelace", "ada@example.com", "", nil, true)

	f.run(t, []httpTest{
		{
			name: "register is public", method: http.MethodPost, path: "/api/users",
			body: marchallObj(t, user.NewUser{FirstName: "No", LastName: "Mail"}), wantCode: http.StatusBadRequest,
		},
		{name: "roles is public", path: "/api/users/roles"},
		{
			name: "token refresh: Auth required", method: http.MethodPost, path: "/api/users/token-refresh",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "detail: Auth required", path: "/api/users/" + itoa(ada.ID),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "delete: Auth required", method: http.MethodDelete, path: "/api/users/" + itoa(ada.ID),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
	})
}
