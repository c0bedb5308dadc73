package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrMailExists         = errors.New("a user with this mail already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyVerified    = errors.New("mail already verified")
)

type (
	Repository interface {
		CheckMailUniqueness(ctx context.Context, mail string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByMail(ctx context.Context, mail string) (User, error)
		// UpdateUser saves every field of usr; a nil PasswordHash keeps the stored one.
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUser(ctx context.Context, id int) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, mail string, exclUsers ...User) error
		Register(ctx context.Context, nu NewUser) (User, error)
		Authenticate(ctx context.Context, mail, pwd string) (User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByMail(ctx context.Context, mail string) (User, error)
		Update(ctx context.Context, id int, uu UpdateUser) (User, error)
		SetPassword(ctx context.Context, mail, pwd string) (User, error)
		Delete(ctx context.Context, id int) error
		SendVerificationCode(ctx context.Context, mail string) error
		VerifyMail(ctx context.Context, vm VerifyMail) error
	}

	service struct {
		repo        Repository
		mailSvc     core.EmailService
		secretKey   []byte
		codeTimeout time.Duration
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:        repo,
		mailSvc:     mailSvc,
		secretKey:   []byte(conf.SecretKey),
		codeTimeout: conf.Mail.VerificationCodeTimeout,
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, mail string, exclUsers ...User) error {
	if err := svc.repo.CheckMailUniqueness(ctx, mail, exclUsers...); err != nil {
		if errors.Cause(err) == ErrMailExists {
			return core.NewValidationError(err, core.FieldError{Field: "mail", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Mail:      nu.Mail,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if usr.Roles == nil {
		usr.Roles = []string{RoleMember}
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate checks the credentials and records the login time.
// Unknown mails and wrong passwords both yield ErrInvalidCredentials.
func (svc *service) Authenticate(ctx context.Context, mail, pwd string) (User, error) {
	usr, err := svc.GetByMail(ctx, mail)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by mail")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = time.Now().UTC()
	usr.PasswordHash = nil
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting lastLogin")
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByMail(ctx context.Context, mail string) (User, error) {
	return svc.repo.GetUserByMail(ctx, core.CleanString(mail, true /* lower */))
}

func (svc *service) Update(ctx context.Context, id int, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !core.SameMail(usr.Mail, uu.Mail) {
		usr.IsVerified = false
	}
	usr.FirstName = uu.FirstName
	usr.LastName = uu.LastName
	usr.Mail = uu.Mail
	if uu.Roles != nil {
		usr.Roles = uu.Roles
	}
	usr.UpdatedAt = time.Now().UTC()
	usr.PasswordHash = nil
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) SetPassword(ctx context.Context, mail, pwd string) (User, error) {
	usr, err := svc.GetByMail(ctx, mail)
	if err != nil {
		return User{}, err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteUser(ctx, id)
}

// SendVerificationCode mails a fresh verification code to the owner of mail.
func (svc *service) SendVerificationCode(ctx context.Context, mail string) error {
	usr, err := svc.GetByMail(ctx, mail)
	if err != nil {
		return err
	}
	if usr.IsVerified {
		return ErrAlreadyVerified
	}
	svc.sendVerificationMail(usr)
	return nil
}

func (svc *service) sendVerificationMail(usr User) {
	code := makeCode(usr, svc.secretKey, svc.codeTimeout, nowFunc())
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Mail}},
		Subject:      "Verify your mail address",
		TemplateName: "verify_mail",
		TemplateData: struct {
			Name      string
			Code      string
			ExpiresIn string
		}{
			Name:      usr.FirstName,
			Code:      code,
			ExpiresIn: svc.codeTimeout.String(),
		},
	})
}

// VerifyMail marks the user verified when the code is valid and not expired.
func (svc *service) VerifyMail(ctx context.Context, vm VerifyMail) error {
	usr, err := svc.GetByMail(ctx, vm.Mail)
	if err != nil {
		return err
	}
	if usr.IsVerified {
		return nil
	}
	if err := verifyCode(usr, vm.Code, svc.secretKey, svc.codeTimeout); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
	}

	usr.IsVerified = true
	usr.UpdatedAt = time.Now().UTC()
	usr.PasswordHash = nil
	_, err = svc.repo.UpdateUser(ctx, usr)
	return errors.Wrap(err, "marking user verified")
}
