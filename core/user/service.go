package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aptcrew/rollbook/core"
)

var (
	// errors
	ErrNotFound        = errors.New("user not found")
	ErrEmailExists     = errors.New("a user with this email already exists")
	ErrUsernameExists  = errors.New("a user with this username already exists")
	ErrEmailNotAllowed = errors.New("this email address is not authorized")

	// loaded from config on service initialization
	appName                   string
	secretKey                 []byte
	passwordResetTimeoutDelta time.Duration
	allowedEmails             []string
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, user User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserByGoogleID(ctx context.Context, googleID string) (User, error)
		GetUserByUsernameOrEmail(ctx context.Context, username string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Username or User.Email.
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, user User, isActive *bool) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		CheckUniqueness(uname, email string, exclUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		QueryAll(ctx context.Context) ([]User, error)
		Filter(ctx context.Context, filter QueryFilter) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByUsername(ctx context.Context, uname string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetByUsernameOrEmail(ctx context.Context, uname string) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		Delete(ctx context.Context, ids ...string) error
		SyncGoogleAccount(ctx context.Context, acct GoogleAccount) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		log     core.Logger
	}
)

// GoogleAccount is the verified profile extracted from a Google ID token.
type GoogleAccount struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

func NewService(repo Repository, mailSvc core.EmailService, log core.Logger) Service {
	appName = core.Conf.AppName
	secretKey = core.Conf.SecretKey
	passwordResetTimeoutDelta = core.Conf.PasswordResetTimeoutDelta
	allowedEmails = core.Conf.Google.AllowedEmails

	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		log:     log,
	}
}

func (svc *service) CheckUniqueness(uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname, email, exclUsers...); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:        uuid.New().String(),
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]User, error) {
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, nil)
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Username:  uu.Username,
		Email:     uu.Email,
		Roles:     uu.Roles,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

// SyncGoogleAccount finds or creates the local account matching a verified
// Google profile. The sign-in allowlist only gates brand new accounts;
// existing accounts sign in regardless. A new account gets the member role
// and no password.
func (svc *service) SyncGoogleAccount(ctx context.Context, acct GoogleAccount) (User, error) {
	email := core.CleanString(acct.Email, true /* lower */)
	now := time.Now().UTC()

	usr, err := svc.repo.GetUserByGoogleID(ctx, acct.ID)
	if err == nil {
		usr.Name = core.CleanString(acct.Name)
		usr.Picture = acct.Picture
		usr.LastLogin = now
		usr.UpdatedAt = now
		return svc.repo.UpdateUser(ctx, usr, nil)
	}
	if errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "finding user by google ID")
	}

	// first Google sign-in for an existing account
	usr, err = svc.repo.GetUserByEmail(ctx, email)
	if err == nil {
		usr.GoogleID = acct.ID
		usr.Picture = acct.Picture
		usr.LastLogin = now
		usr.UpdatedAt = now
		return svc.repo.UpdateUser(ctx, usr, nil)
	}
	if errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "finding user by email")
	}

	if !emailAllowed(email) {
		return User{}, ErrEmailNotAllowed
	}

	usr = User{
		ID:        uuid.New().String(),
		Name:      core.CleanString(acct.Name),
		Email:     email,
		Picture:   acct.Picture,
		GoogleID:  acct.ID,
		IsActive:  true,
		Roles:     []string{RoleMember},
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err := verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err := usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr, nil)
	return err
}

func (svc *service) sendPasswordResetMail(usr User) {
	token, err := makeToken(usr)
	if err != nil {
		svc.log.Error("generating password reset token", "err", err)
		return
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      appName + " - Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			User    User
			UID     string
			Token   string
			Timeout time.Duration
		}{usr, EncodeUID(usr), token, passwordResetTimeoutDelta},
	}
	svc.mailSvc.SendMessages(msg)
}

func emailAllowed(email string) bool {
	if len(allowedEmails) == 0 {
		return true
	}
	for _, allowed := range allowedEmails {
		if email == core.CleanString(allowed, true /* lower */) {
			return true
		}
	}
	return false
}
