package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/registrar/apps/api/echo"
	"github.com/trezcool/registrar/core/user"
	"github.com/trezcool/registrar/tests"
)

func Test_authApi_login(t *testing.T) {
	app, svcs := setup(t)

	ann := testutil.CreateUser(t, svcs.UserSvc, user.TypeStudent, "2001", "Ann", "Secret#1")
	reqMsg := "this field is required"

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, echoapi.LoginRequest{Username: reqMsg, Password: reqMsg}),
		},
		{
			name: "unknown username", wantCode: http.StatusBadRequest,
			body:     marshalObj(t, echoapi.LoginRequest{Username: "9999", Password: "Secret#1"}),
			wantData: marshalObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marshalObj(t, echoapi.LoginRequest{Username: "2001", Password: "secret#1"}),
			wantData: marshalObj(t, httpErr{Error: "authentication failed"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/auth/login"
	}
	runHTTPTests(t, app, tests)

	t.Run("valid credentials", func(t *testing.T) {
		body := marshalObj(t, echoapi.LoginRequest{Username: " 2001 ", Password: "Secret#1"})
		req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.SessionID)
		assert.Equal(t, ann.ID, resp.User.ID)
		assert.Equal(t, user.TypeStudent, resp.User.Type)
		assert.NotContains(t, rec.Body.String(), "password")

		// the token opens the student dashboard
		req, rec = newAuthRequest(http.MethodGet, "/v1/student/courses/current", resp.Token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_authApi_register(t *testing.T) {
	app, svcs := setup(t)

	testutil.CreateUser(t, svcs.UserSvc, user.TypeStudent, "2001", "Ann", "Secret#1")

	newUser := func(uname, typ string) user.NewUser {
		return user.NewUser{Name: "Bob Ross", Username: uname, Password: "Paint#99", PasswordConfirm: "Paint#99", Type: typ}
	}

	tests := []httpTest{
		{
			name: "invalid type", wantCode: http.StatusBadRequest,
			body:     marshalObj(t, newUser("bob", "janitor")),
			wantData: marshalObj(t, map[string]string{"type": "invalid user type"}),
		},
		{
			name: "non numeric student username", wantCode: http.StatusBadRequest,
			body:     marshalObj(t, newUser("bob", "student")),
			wantData: marshalObj(t, map[string]string{"username": "student usernames must be the numeric student ID"}),
		},
		{
			name: "username taken", wantCode: http.StatusBadRequest,
			body:     marshalObj(t, newUser("2001", "student")),
			wantData: marshalObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
		{
			name: "admin self-registration", wantCode: http.StatusForbidden,
			body:     marshalObj(t, newUser("bob", "admin")),
			wantData: marshalObj(t, httpErr{Error: "administrators cannot self-register"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/auth/register"
	}
	runHTTPTests(t, app, tests)

	t.Run("teacher registered", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/register", marshalObj(t, newUser(" Bob ", "Teacher")))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.Equal(t, "bob", usr.Username)
		assert.Equal(t, user.TypeTeacher, usr.Type)

		_, err := svcs.UserSvc.Authenticate(context.Background(), "bob", "Paint#99")
		assert.NoError(t, err)
	})
}

func Test_authApi_usernameExists(t *testing.T) {
	app, svcs := setup(t)

	testutil.CreateUser(t, svcs.UserSvc, user.TypeTeacher, "amy", "Amy", "Secret#1")

	tests := []httpTest{
		{
			name: "username required", path: "/v1/auth/username-exists", wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"username": "this field is required"}),
		},
		{
			name: "taken", path: "/v1/auth/username-exists?username=AMY",
			wantData: marshalObj(t, echoapi.UsernameExistsResponse{Username: "amy", Exists: true}),
		},
		{
			name: "free", path: "/v1/auth/username-exists?username=zed",
			wantData: marshalObj(t, echoapi.UsernameExistsResponse{Username: "zed", Exists: false}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodGet
	}
	runHTTPTests(t, app, tests)
}

func Test_authApi_refreshToken(t *testing.T) {
	app, svcs := setup(t)
	ctx := context.Background()

	ann := testutil.CreateUser(t, svcs.UserSvc, user.TypeStudent, "2001", "Ann", "Secret#1")
	gone := testutil.CreateUser(t, svcs.UserSvc, user.TypeStudent, "2002", "Gone", "Secret#1")
	goneToken := getToken(t, gone)
	require.NoError(t, svcs.AdminSvc.RemoveUser(ctx, gone.ID))

	stale := echoapi.GetUserClaims(ann, conf, "", time.Now().Add(-2*conf.Server.JWTRefreshExpirationDelta).Unix())
	staleToken, err := echoapi.GenerateToken(stale, conf.SecretKey)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "account removed", token: goneToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "account removed"})},
		{name: "refresh period expired", token: staleToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "refresh has expired"})},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/auth/token-refresh"
	}
	runHTTPTests(t, app, tests)

	t.Run("token refreshed", func(t *testing.T) {
		claims := echoapi.GetUserClaims(ann, conf, "session-1")
		token, err := echoapi.GenerateToken(claims, conf.SecretKey)
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodPost, "/v1/auth/token-refresh", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// cannot guess the new token; the session must carry over
		var resp echoapi.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "session-1", resp.SessionID)
		assert.Equal(t, ann.Username, resp.User.Username)
	})
}

func Test_authApi_me(t *testing.T) {
	app, svcs := setup(t)

	amy := testutil.CreateUser(t, svcs.UserSvc, user.TypeTeacher, "amy", "Amy", "Secret#1")

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "current user", token: getToken(t, amy), wantData: marshalObj(t, amy)},
	}
	for i := range tests {
		tests[i].method = http.MethodGet
		tests[i].path = "/v1/auth/me"
	}
	runHTTPTests(t, app, tests)
}
