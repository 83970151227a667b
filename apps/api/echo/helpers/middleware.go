package helpers

import "github.com/labstack/echo/v4"

// AdminMiddleware only lets admins through; extra roles narrow it further.
func AdminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := GetContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.IsAdmin && ContextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return ErrHttpForbidden
		}
	}
}

// StaffMiddleware lets staff and admins through.
func StaffMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := GetContextClaims(ctx)
			if err != nil {
				return err
			}
			if (claims.IsStaff || claims.IsAdmin) && ContextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return ErrHttpForbidden
		}
	}
}
