package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aptcrew/rollbook/apps/api/echo/helpers"
	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/instrument"
)

type instrumentApi struct {
	svc *instrument.Service
}

func RegisterInstrumentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *instrument.Service) {
	api := instrumentApi{svc: svc}

	ig := g.Group("/instruments", jwt)
	ig.GET("", api.query)
	ig.GET("/:id", api.retrieve)
	ig.POST("/:id/checkout", api.checkout, helpers.StaffMiddleware())
	ig.POST("/:id/checkin", api.checkin, helpers.StaffMiddleware())
}

// Handlers

func (api *instrumentApi) query(ctx echo.Context) error {
	instruments, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying instruments")
	}

	now := instrument.NowFunc().UTC()
	resp := make([]InstrumentResponse, 0, len(instruments))
	for _, inst := range instruments {
		resp = append(resp, newInstrumentResponse(inst, now))
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *instrumentApi) retrieve(ctx echo.Context) error {
	inst, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newInstrumentResponse(inst, instrument.NowFunc().UTC()))
}

func (api *instrumentApi) checkout(ctx echo.Context) error {
	var data instrument.CheckoutRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckoutRequest")
	}
	data.MemberName = core.CleanString(data.MemberName)
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	inst, err := api.svc.CheckOut(ctx.Request().Context(), ctx.Param("id"), data.MemberName)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newInstrumentResponse(inst, instrument.NowFunc().UTC()))
}

func (api *instrumentApi) checkin(ctx echo.Context) error {
	inst, err := api.svc.CheckIn(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newInstrumentResponse(inst, instrument.NowFunc().UTC()))
}

// InstrumentResponse decorates an instrument with how long it has been out.
type InstrumentResponse struct {
	instrument.Instrument
	DaysOut int `json:"days_out"`
}

func newInstrumentResponse(inst instrument.Instrument, now time.Time) InstrumentResponse {
	return InstrumentResponse{Instrument: inst, DaysOut: inst.DaysOut(now)}
}
