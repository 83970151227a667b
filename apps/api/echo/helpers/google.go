package helpers

import (
	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/user"
)

// AuthenticateGoogle verifies a Google ID token, syncs the matching local
// account and returns its claims.
func AuthenticateGoogle(ctx echo.Context, idToken string, svc user.Service) (*Claims, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{core.Conf.Google.ClientID}); err != nil {
		return nil, errGoogleAuthFailed
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, errGoogleAuthFailed
	}

	usr, err := svc.SyncGoogleAccount(ctx.Request().Context(), user.GoogleAccount{
		ID:      claimSet.Sub,
		Email:   claimSet.Email,
		Name:    claimSet.Name,
		Picture: claimSet.Picture,
	})
	if err != nil {
		if errors.Cause(err) == user.ErrEmailNotAllowed {
			return nil, errEmailNotAllowed
		}
		return nil, errors.Wrap(err, "syncing google account")
	}
	if !usr.IsActive {
		return nil, errAccountDeactivated
	}
	return GetUserClaims(usr), nil
}
