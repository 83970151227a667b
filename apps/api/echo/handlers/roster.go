package handlers

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aptcrew/rollbook/core/roster"
)

type rosterApi struct {
	svc *roster.Service
}

func RegisterRosterAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *roster.Service) {
	api := rosterApi{svc: svc}

	sg := g.Group("/sections", jwt)
	sg.GET("", api.querySections)
	sg.GET("/:section/members", api.queryMembers)
}

func (api *rosterApi) querySections(ctx echo.Context) error {
	sections, err := api.svc.Sections(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	if sections == nil {
		sections = []roster.Section{}
	}
	return ctx.JSON(http.StatusOK, sections)
}

func (api *rosterApi) queryMembers(ctx echo.Context) error {
	members, err := api.svc.Members(ctx.Request().Context(), sectionParam(ctx))
	if err != nil {
		return err
	}
	if members == nil {
		members = []roster.Member{}
	}
	return ctx.JSON(http.StatusOK, members)
}

// sectionParam returns the :section path param; section names contain
// spaces so the escaped form is expected on the wire.
func sectionParam(ctx echo.Context) string {
	section := ctx.Param("section")
	if unescaped, err := url.PathUnescape(section); err == nil {
		return unescaped
	}
	return section
}
