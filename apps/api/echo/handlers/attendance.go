package handlers

import (
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aptcrew/rollbook/apps/api/echo/helpers"
	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/attendance"
	"github.com/aptcrew/rollbook/core/roster"
)

type attendanceApi struct {
	svc    *attendance.Service
	roster *roster.Service
}

func RegisterAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service, rosterSvc *roster.Service) {
	api := attendanceApi{svc: svc, roster: rosterSvc}

	ag := g.Group("/attendance/:section", jwt)
	ag.GET("/today", api.today)
	ag.POST("/mark", api.mark, helpers.StaffMiddleware())
	ag.POST("/toggle", api.toggle, helpers.StaffMiddleware())
	ag.GET("/report", api.report)
	ag.POST("/report/email", api.emailReport, helpers.StaffMiddleware())
}

// Handlers

func (api *attendanceApi) today(ctx echo.Context) error {
	section := sectionParam(ctx)
	rc := ctx.Request().Context()

	// checks the section exists first
	names, err := api.roster.MemberNames(rc, section)
	if err != nil {
		return err
	}
	statuses, err := api.svc.TodayStatus(rc, section)
	if err != nil {
		return err
	}
	present, absent := attendance.Counts(names, statuses)

	return ctx.JSON(http.StatusOK, TodayResponse{
		Date:     api.svc.Today(),
		Section:  section,
		Statuses: statuses,
		Present:  present,
		Absent:   absent,
	})
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data MarkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rec, err := api.svc.Mark(ctx.Request().Context(), sectionParam(ctx), data.MemberName, attendance.Status(data.Status), recorder(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) toggle(ctx echo.Context) error {
	var data ToggleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ToggleRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rec, err := api.svc.Toggle(ctx.Request().Context(), sectionParam(ctx), data.MemberName, recorder(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) report(ctx echo.Context) error {
	section := sectionParam(ctx)

	// checks the section exists first
	if _, err := api.roster.MemberNames(ctx.Request().Context(), section); err != nil {
		return err
	}
	entries, err := api.svc.Report(ctx.Request().Context(), section)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []attendance.ReportEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *attendanceApi) emailReport(ctx echo.Context) error {
	var data EmailReportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmailReportRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	to := make([]mail.Address, 0, len(data.To))
	for _, addr := range data.To {
		to = append(to, mail.Address{Address: addr})
	}
	if err := api.svc.EmailReport(ctx.Request().Context(), sectionParam(ctx), to); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Absence report is on its way."})
}

// recorder identifies the signed-in user taking attendance.
func recorder(ctx echo.Context) string {
	if claims, err := helpers.GetContextClaims(ctx); err == nil {
		if claims.Username != "" {
			return claims.Username
		}
		return claims.Email
	}
	return ""
}

type (
	TodayResponse struct {
		Date     string               `json:"date"`
		Section  string               `json:"section"`
		Statuses attendance.StatusMap `json:"statuses"`
		Present  int                  `json:"present"`
		Absent   int                  `json:"absent"`
	}

	MarkRequest struct {
		MemberName string `json:"member_name" validate:"required"`
		Status     string `json:"status" validate:"required,oneof=present absent"`
	}

	ToggleRequest struct {
		MemberName string `json:"member_name" validate:"required"`
	}

	EmailReportRequest struct {
		To []string `json:"to" validate:"required,min=1,dive,email"`
	}
)

func (mr *MarkRequest) Validate() error {
	mr.MemberName = core.CleanString(mr.MemberName)
	return core.Validate.Struct(mr)
}

func (tr *ToggleRequest) Validate() error {
	tr.MemberName = core.CleanString(tr.MemberName)
	return core.Validate.Struct(tr)
}

func (er *EmailReportRequest) Validate() error {
	for i, addr := range er.To {
		er.To[i] = core.CleanString(addr, true /* lower */)
	}
	return core.Validate.Struct(er)
}
