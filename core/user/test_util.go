package user

import (
	"context"

	"github.com/aptcrew/rollbook/core"
)

type serviceMock struct {
	service
}

func NewServiceMock(repo Repository, mailSvc core.EmailService, log core.Logger) Service {
	appName = core.Conf.AppName
	secretKey = core.Conf.SecretKey
	passwordResetTimeoutDelta = core.Conf.PasswordResetTimeoutDelta
	allowedEmails = core.Conf.Google.AllowedEmails

	return &serviceMock{
		service: service{
			repo:    repo,
			mailSvc: mailSvc,
			log:     log,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}
