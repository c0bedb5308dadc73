package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/user"
	logsvc "github.com/astravon/portal/services/logger"
)

// NewConfig returns the configuration used by tests; it does not read the environment.
func NewConfig() *core.Config {
	conf := &core.Config{
		Debug:           true,
		TestMode:        true,
		AppName:         "Astravon",
		SecretKey:       "test-secret",
		Build:           "test",
		Env:             "TEST",
		FrontendBaseURL: "http://localhost:3000",
		AdminMails:      []string{"admin@example.com"},
	}
	conf.Server = core.ServerConfig{
		Address:                   ":0",
		Host:                      "localhost",
		ShutdownTimeout:           time.Second,
		JWTExpirationDelta:        time.Hour,
		JWTRefreshExpirationDelta: 4 * time.Hour,
	}
	conf.Mail = core.MailConfig{
		DefaultFromEmail:        mail.Address{Name: "Astravon", Address: "noreply@localhost"},
		VerificationCodeTimeout: 15 * time.Minute,
	}
	conf.Upload = core.UploadConfig{Driver: "disk", PublicURL: "http://localhost/media"}
	return conf
}

// NewLogger returns a logger discarding its output.
func NewLogger() core.Logger {
	return logsvc.New(io.Discard, "TEST : ", log.LstdFlags, NewConfig())
}

// NewValidator returns a validator with every app validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(NewLogger())
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	firstName, lastName, mail, pwd string,
	roles []string,
	isVerified bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		FirstName:  firstName,
		LastName:   lastName,
		Mail:       mail,
		Roles:      roles,
		IsVerified: isVerified,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	if pwd == "" {
		pwd = "Secret-pass1"
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
