package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aptcrew/rollbook/core/instrument"
	"github.com/aptcrew/rollbook/core/roster"
	"github.com/aptcrew/rollbook/core/user"
	inmemdb "github.com/aptcrew/rollbook/storage/database/inmem"
)

func setupInstrumentAPI(t *testing.T) (*echo.Echo, string, string) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed, %v", err)
	}
	db.AddSections(roster.Section{Name: "Core Adults", Position: 1})
	db.AddMembers(roster.Member{ID: "1", Section: "Core Adults", Name: "Abi", Position: 1})
	db.AddInstruments(
		instrument.Instrument{ID: "1", Name: "Irumbu Parai", Type: "Parai"},
		instrument.Instrument{ID: "2", Name: "Melam", Type: "Melam"},
	)

	rosterSvc := roster.NewService(inmemdb.NewRosterRepository(db))
	svc := instrument.NewService(inmemdb.NewInstrumentRepository(db), rosterSvc)

	app, v1, jwt := initApp()
	RegisterInstrumentAPI(v1, jwt, svc)

	usrRepo := inmemdb.NewUserRepository(db)
	staff := createUser(t, usrRepo, "Staff", "insstaff", "insstaff@test.cd", "", []string{user.RoleStaff}, true)
	member := createUser(t, usrRepo, "Member", "insmember", "insmember@test.cd", "", []string{user.RoleMember}, true)

	return app, getToken(t, staff), getToken(t, member)
}

func TestInstrumentAPI(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	origNow := instrument.NowFunc
	instrument.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { instrument.NowFunc = origNow })

	app, staffToken, memberToken := setupInstrumentAPI(t)

	parai := instrument.Instrument{ID: "1", Name: "Irumbu Parai", Type: "Parai"}
	melam := instrument.Instrument{ID: "2", Name: "Melam", Type: "Melam"}
	by := "Abi"
	paraiOut := parai
	paraiOut.CheckedOutBy = &by
	paraiOut.CheckedOutAt = &now
	paraiOut.UpdatedAt = now

	tests := []httpTest{
		{name: "query requires auth", method: http.MethodGet, path: "/v1/instruments", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "query", method: http.MethodGet, path: "/v1/instruments", token: memberToken, wantCode: http.StatusOK,
			wantData: marchallList(t, newInstrumentResponse(parai, now), newInstrumentResponse(melam, now))},
		{name: "retrieve unknown", method: http.MethodGet, path: "/v1/instruments/99", token: memberToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: instrument.ErrNotFound.Error()})},
		{name: "retrieve", method: http.MethodGet, path: "/v1/instruments/2", token: memberToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, newInstrumentResponse(melam, now))},
		{name: "checkout requires staff", method: http.MethodPost, path: "/v1/instruments/1/checkout", token: memberToken,
			body:     marchallObj(t, instrument.CheckoutRequest{MemberName: "Abi"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})},
		{name: "checkout unknown member", method: http.MethodPost, path: "/v1/instruments/1/checkout", token: staffToken,
			body:     marchallObj(t, instrument.CheckoutRequest{MemberName: "Nobody"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: roster.ErrMemberNotFound.Error()})},
		{name: "checkout", method: http.MethodPost, path: "/v1/instruments/1/checkout", token: staffToken,
			body:     marchallObj(t, instrument.CheckoutRequest{MemberName: "Abi"}),
			wantCode: http.StatusOK, wantData: marchallObj(t, newInstrumentResponse(paraiOut, now))},
		{name: "checkout conflict", method: http.MethodPost, path: "/v1/instruments/1/checkout", token: staffToken,
			body:     marchallObj(t, instrument.CheckoutRequest{MemberName: "Abi"}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: instrument.ErrAlreadyCheckedOut.Error()})},
		{name: "checkin requires staff", method: http.MethodPost, path: "/v1/instruments/1/checkin", token: memberToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})},
		{name: "checkin", method: http.MethodPost, path: "/v1/instruments/1/checkin", token: staffToken, wantCode: http.StatusOK},
		{name: "checkin conflict", method: http.MethodPost, path: "/v1/instruments/1/checkin", token: staffToken,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: instrument.ErrNotCheckedOut.Error()})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
