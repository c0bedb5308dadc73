package user_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/user"
	emailsvc "github.com/astravon/portal/services/email"
	"github.com/astravon/portal/storage/database/inmem"
	"github.com/astravon/portal/tests"
)

func setup(t *testing.T) (user.Service, user.Repository, *emailsvc.ConsoleServiceMock) {
	t.Helper()
	conf := testutil.NewConfig()
	logger := testutil.NewLogger()
	require.NoError(t, core.ParseEmailTemplates(conf))

	repo := inmemdb.NewUserRepository(inmemdb.Open())
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	return user.NewService(repo, mailSvc, conf), repo, mailSvc
}

func TestService_Register(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{FirstName: "Ada", LastName: "Lovelace", Mail: "ada@example.com", Password: "Engine-1843!"})
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.Equal(t, []string{user.RoleMember}, usr.Roles)
	assert.NoError(t, usr.CheckPassword("Engine-1843!"))

	_, err = svc.Register(ctx, user.NewUser{FirstName: "Ada", LastName: "Byron", Mail: "ada@example.com", Password: "Engine-1843!"})
	assert.Equal(t, user.ErrMailExists, errors.Cause(err))

	err = svc.CheckUniqueness(ctx, " ADA@example.com ")
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "mail", verr.Fields[0].Field)
	assert.NoError(t, svc.CheckUniqueness(ctx, "ada@example.com", usr))
}

func TestService_Authenticate(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Ada", "Lovelace", "ada@example.com", "", nil, true)

	tests := []struct {
		name    string
		mail    string
		pwd     string
		wantErr error
	}{
		{name: "unknown mail", mail: "nobody@example.com", pwd: "Secret-pass1", wantErr: user.ErrInvalidCredentials},
		{name: "wrong password", mail: usr.Mail, pwd: "lol", wantErr: user.ErrInvalidCredentials},
		{name: "mail case and spaces", mail: "  ADA@example.com", pwd: "Secret-pass1"},
		{name: "valid", mail: usr.Mail, pwd: "Secret-pass1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.mail, tt.pwd)
			if err != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				assert.Equal(t, usr.ID, got.ID)
				assert.False(t, got.LastLogin.IsZero())
				// stored hash is kept
				assert.NoError(t, got.CheckPassword("Secret-pass1"))
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Ada", "Lovelace", "ada@example.com", "", []string{user.RoleMember}, true)

	got, err := svc.Update(ctx, usr.ID, user.UpdateUser{FirstName: "Augusta", LastName: usr.LastName, Mail: usr.Mail})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", got.FirstName)
	assert.True(t, got.IsVerified)
	assert.NoError(t, got.CheckPassword("Secret-pass1"))

	got, err = svc.Update(ctx, usr.ID, user.UpdateUser{FirstName: "Augusta", LastName: usr.LastName, Mail: "augusta@example.com", Password: "New-pass-42"})
	require.NoError(t, err)
	assert.False(t, got.IsVerified, "a new mail must be verified again")
	assert.NoError(t, got.CheckPassword("New-pass-42"))

	_, err = svc.Update(ctx, 999, user.UpdateUser{})
	assert.Equal(t, user.ErrNotFound, err)
}

func TestService_SetPasswordAndDelete(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Ada", "Lovelace", "ada@example.com", "", nil, true)

	got, err := svc.SetPassword(ctx, usr.Mail, "Other-pass9")
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword("Other-pass9"))

	require.NoError(t, svc.Delete(ctx, usr.ID))
	_, err = svc.GetByID(ctx, usr.ID)
	assert.Equal(t, user.ErrNotFound, err)
	assert.Equal(t, user.ErrNotFound, svc.Delete(ctx, usr.ID))
}

var codeRegex = regexp.MustCompile(`\b(\d{6})\b`)

func TestService_VerifyMail(t *testing.T) {
	svc, repo, mailSvc := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Ada", "Lovelace", "ada@example.com", "", nil, false)
	verified := testutil.CreateUser(t, repo, "Grace", "Hopper", "grace@example.com", "", nil, true)

	assert.Equal(t, user.ErrAlreadyVerified, svc.SendVerificationCode(ctx, verified.Mail))
	assert.Equal(t, user.ErrNotFound, svc.SendVerificationCode(ctx, "nobody@example.com"))

	require.NoError(t, svc.SendVerificationCode(ctx, usr.Mail))
	sent := mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, usr.Mail, sent[0].To[0].Address)

	match := codeRegex.FindStringSubmatch(sent[0].TextContent)
	require.Len(t, match, 2, "code not found in %q", sent[0].TextContent)
	code := match[1]

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	err := svc.VerifyMail(ctx, user.VerifyMail{Mail: usr.Mail, Code: wrong})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "code", verr.Fields[0].Field)

	require.NoError(t, svc.VerifyMail(ctx, user.VerifyMail{Mail: usr.Mail, Code: code}))
	got, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
}
