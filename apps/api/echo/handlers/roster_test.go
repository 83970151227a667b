package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aptcrew/rollbook/core/roster"
	"github.com/aptcrew/rollbook/core/user"
	inmemdb "github.com/aptcrew/rollbook/storage/database/inmem"
)

func setupRosterAPI(t *testing.T) (*echo.Echo, string) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed, %v", err)
	}
	db.AddSections(
		roster.Section{Name: "2025 Adults", Position: 1},
		roster.Section{Name: "Core Adults", Position: 2},
	)
	db.AddMembers(
		roster.Member{ID: "1", Section: "Core Adults", Name: "Abi", Position: 1},
		roster.Member{ID: "2", Section: "Core Adults", Name: "Bala", Position: 2},
	)

	app, v1, jwt := initApp()
	RegisterRosterAPI(v1, jwt, roster.NewService(inmemdb.NewRosterRepository(db)))

	usr := createUser(t, inmemdb.NewUserRepository(db), "Member", "rosmember", "rosmember@test.cd", "", []string{user.RoleMember}, true)
	return app, getToken(t, usr)
}

func TestRosterAPI(t *testing.T) {
	app, token := setupRosterAPI(t)

	tests := []httpTest{
		{name: "sections require auth", method: http.MethodGet, path: "/v1/sections", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "sections", method: http.MethodGet, path: "/v1/sections", token: token, wantCode: http.StatusOK,
			wantData: marchallList(t,
				roster.Section{Name: "2025 Adults", Position: 1},
				roster.Section{Name: "Core Adults", Position: 2},
			)},
		{name: "members unknown section", method: http.MethodGet, path: "/v1/sections/" + url.PathEscape("No Such Section") + "/members", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: roster.ErrSectionNotFound.Error()})},
		{name: "members empty", method: http.MethodGet, path: "/v1/sections/" + url.PathEscape("2025 Adults") + "/members", token: token,
			wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "members", method: http.MethodGet, path: "/v1/sections/" + url.PathEscape("Core Adults") + "/members", token: token,
			wantCode: http.StatusOK,
			wantData: marchallList(t,
				roster.Member{ID: "1", Section: "Core Adults", Name: "Abi", Position: 1},
				roster.Member{ID: "2", Section: "Core Adults", Name: "Bala", Position: 2},
			)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
