package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astravon/portal/core/session"
	"github.com/astravon/portal/core/user"
	"github.com/astravon/portal/tests"
)

func readKeys(t *testing.T, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	values := make(map[string]string)
	require.NoError(t, json.Unmarshal(data, &values))
	return values
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := session.NewFileStore(path, testutil.NewLogger())

	// missing file: logged out
	assert.Equal(t, session.Session{}, store.Load())

	profile := &user.Profile{ID: 1, FirstName: "Ana", LastName: "Lee", Mail: "a@b.com", Token: "tkn"}
	require.NoError(t, store.Save(session.Session{IsAuthenticated: true, User: profile}))

	values := readKeys(t, path)
	assert.Equal(t, "true", values[session.KeyIsAuthenticated])
	assert.JSONEq(t, `{"id":1,"firstName":"Ana","lastName":"Lee","mail":"a@b.com","token":"tkn"}`, values[session.KeyUser])

	loaded := store.Load()
	assert.True(t, loaded.Valid())
	assert.Equal(t, profile, loaded.User)
	assert.Equal(t, "tkn", loaded.Token())

	require.NoError(t, store.Clear())
	values = readKeys(t, path)
	assert.NotContains(t, values, session.KeyIsAuthenticated)
	assert.NotContains(t, values, session.KeyUser)
	assert.False(t, store.Load().Valid())
}

func TestFileStore_keepsForeignKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o600))
	store := session.NewFileStore(path, testutil.NewLogger())

	require.NoError(t, store.Save(session.Session{IsAuthenticated: true, User: &user.Profile{ID: 7}}))
	require.NoError(t, store.Clear())
	assert.Equal(t, map[string]string{"theme": "dark"}, readKeys(t, path))
}

func TestFileStore_malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    session.Session
	}{
		{name: "not json", content: "lol{", want: session.Session{}},
		{name: "wrong value types", content: `{"isAuthenticated":true}`, want: session.Session{}},
		{name: "bad user json", content: `{"isAuthenticated":"true","user":"{oops"}`, want: session.Session{IsAuthenticated: true}},
		{name: "flag not true", content: `{"isAuthenticated":"yes","user":"{\"id\":2}"}`, want: session.Session{User: &user.Profile{ID: 2}}},
		{name: "empty file", content: "", want: session.Session{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			store := session.NewFileStore(path, testutil.NewLogger())

			got := store.Load()
			assert.Equal(t, tt.want, got)
			assert.False(t, got.Valid())
		})
	}
}

func TestMemoryStore(t *testing.T) {
	store := session.NewMemoryStore(testutil.NewLogger())
	assert.False(t, store.Load().Valid())

	store.Set(session.KeyIsAuthenticated, "true")
	store.Set(session.KeyUser, "not json")
	assert.Equal(t, session.Session{IsAuthenticated: true}, store.Load())

	require.NoError(t, store.Save(session.Session{IsAuthenticated: true, User: &user.Profile{ID: 1, Mail: "a@b.com"}}))
	raw, ok := store.Get(session.KeyUser)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":1,"firstName":"","lastName":"","mail":"a@b.com"}`, raw)

	require.NoError(t, store.Clear())
	_, ok = store.Get(session.KeyIsAuthenticated)
	assert.False(t, ok)
	_, ok = store.Get(session.KeyUser)
	assert.False(t, ok)
}

type authFunc func(ctx context.Context, mail, password string) (user.Profile, error)

func (f authFunc) Login(ctx context.Context, mail, password string) (user.Profile, error) {
	return f(ctx, mail, password)
}

func TestSignInSignOut(t *testing.T) {
	guard := session.NewGuard("admin@example.com")
	store := session.NewMemoryStore(testutil.NewLogger())
	errBadCreds := errors.New("invalid credentials")

	auth := authFunc(func(ctx context.Context, mail, password string) (user.Profile, error) {
		if mail == "a@b.com" && password == "x" {
			return user.Profile{ID: 1, FirstName: "Ana", Mail: mail, Token: "tkn"}, nil
		}
		return user.Profile{}, errBadCreds
	})

	// failed login leaves the store untouched
	_, err := session.SignIn(context.Background(), auth, store, "a@b.com", "nope")
	assert.Equal(t, errBadCreds, err)
	assert.False(t, guard.Authorize(store.Load(), session.Authenticated).Allowed)

	sess, err := session.SignIn(context.Background(), auth, store, "a@b.com", "x")
	require.NoError(t, err)
	assert.True(t, sess.Valid())

	flag, _ := store.Get(session.KeyIsAuthenticated)
	assert.Equal(t, "true", flag)
	_, ok := store.Get(session.KeyUser)
	assert.True(t, ok)
	assert.True(t, guard.Authorize(store.Load(), session.Authenticated).Allowed)
	assert.False(t, guard.Authorize(store.Load(), session.AdminOnly).Allowed)

	require.NoError(t, session.SignOut(store))
	assert.False(t, guard.Authorize(store.Load(), session.Authenticated).Allowed)
	assert.False(t, guard.Authorize(store.Load(), session.AdminOnly).Allowed)
}
