package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aptcrew/rollbook/apps/api/echo/helpers"
	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/finance"
	"github.com/aptcrew/rollbook/core/roster"
)

type financeApi struct {
	svc    *finance.Service
	roster *roster.Service
}

func RegisterFinanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *finance.Service, rosterSvc *roster.Service) {
	api := financeApi{svc: svc, roster: rosterSvc}

	fg := g.Group("/finance/:section", jwt)
	fg.GET("", api.statuses)
	fg.PUT("/status", api.setStatus, helpers.StaffMiddleware())
}

// Handlers

func (api *financeApi) statuses(ctx echo.Context) error {
	section := sectionParam(ctx)
	rc := ctx.Request().Context()

	// checks the section exists first
	names, err := api.roster.MemberNames(rc, section)
	if err != nil {
		return err
	}
	statuses, err := api.svc.Statuses(rc, section)
	if err != nil {
		return errors.Wrap(err, "querying payment statuses")
	}

	// members without a record default to unpaid
	for _, name := range names {
		if _, ok := statuses[name]; !ok {
			statuses[name] = finance.StatusUnpaid
		}
	}
	return ctx.JSON(http.StatusOK, PaymentStatusResponse{Section: section, Statuses: statuses})
}

func (api *financeApi) setStatus(ctx echo.Context) error {
	var data finance.UpdateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRequest")
	}
	data.MemberName = core.CleanString(data.MemberName)
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	rec, err := api.svc.SetStatus(ctx.Request().Context(), sectionParam(ctx), data.MemberName, finance.PaymentStatus(data.Status), recorder(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

type PaymentStatusResponse struct {
	Section  string                           `json:"section"`
	Statuses map[string]finance.PaymentStatus `json:"statuses"`
}
