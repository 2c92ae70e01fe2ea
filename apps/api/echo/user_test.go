package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/masolab/soko/core/user"
)

func TestUserRegister(t *testing.T) {
	app := setup(t)
	app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.StudentRoles, true)

	tests := []httpTest{
		{
			name:     "Register, no data",
			method:   http.MethodPost,
			path:     "/v1/users/register",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "Register, password mismatch",
			method: http.MethodPost,
			path:   "/v1/users/register",
			body: []byte(`{"username": "awesome1", "email": "awesome1@test.soko",
				"password": "S3cretPwd!", "password_confirm": "nope"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "Register, weak password",
			method: http.MethodPost,
			path:   "/v1/users/register",
			body: []byte(`{"username": "awesome1", "email": "awesome1@test.soko",
				"password": "password", "password_confirm": "password"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "Register, duplicate username",
			method: http.MethodPost,
			path:   "/v1/users/register",
			body: []byte(`{"username": "janedoe", "email": "other@test.soko",
				"password": "S3cretPwd!", "password_confirm": "S3cretPwd!"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
		{
			name:   "Register, duplicate email",
			method: http.MethodPost,
			path:   "/v1/users/register",
			body: []byte(`{"username": "awesome1", "email": "janedoe@test.soko",
				"password": "S3cretPwd!", "password_confirm": "S3cretPwd!"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{
			name:   "Register, invalid role",
			method: http.MethodPost,
			path:   "/v1/users/register",
			body: []byte(`{"username": "awesome1", "email": "awesome1@test.soko", "role": "admin:",
				"password": "S3cretPwd!", "password_confirm": "S3cretPwd!"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "Register ok",
			method: http.MethodPost,
			path:   "/v1/users/register",
			body: []byte(`{"name": "New Teacher", "username": "awesome1", "email": "awesome1@test.soko",
				"role": "teacher:", "password": "S3cretPwd!", "password_confirm": "S3cretPwd!"}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// failed registrations must not leave rows behind
	users, err := app.usrRepo.QueryAllUsers()
	assert.NoError(t, err)
	assert.Len(t, users, 2)

	usr, err := app.usrSvc.GetByUsername("awesome1")
	assert.NoError(t, err)
	assert.True(t, usr.IsActive)
	assert.True(t, usr.IsTeacher())
	assert.False(t, usr.IsAdmin())
}

func TestUserRegisterIssuesTokens(t *testing.T) {
	app := setup(t)

	body := []byte(`{"username": "awesome1", "email": "awesome1@test.soko",
		"password": "S3cretPwd!", "password_confirm": "S3cretPwd!"}`)
	req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp RegisterResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Access)
	assert.NotEmpty(t, resp.Refresh)
	assert.Equal(t, "awesome1", resp.User.Username)
	assert.True(t, resp.User.IsStudent()) // default registration role

	// the issued access token is usable right away
	req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", resp.Access)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserLogin(t *testing.T) {
	app := setup(t)
	app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.StudentRoles, true)
	app.createUser(t, "Numb Skull", "numbskull", "numbskull@test.soko", "S3cretPwd!", user.StudentRoles, false)

	authFailed := marchallObj(t, httpErr{Error: "authentication failed"})
	tests := []httpTest{
		{
			name:     "Login, no data",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Login, unknown user",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"username": "nosuchuser", "password": "S3cretPwd!"}`),
			wantCode: http.StatusBadRequest,
			wantData: authFailed,
		},
		{
			// indistinguishable from the unknown-user case
			name:     "Login, wrong password",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"username": "janedoe", "password": "WrongPwd!1"}`),
			wantCode: http.StatusBadRequest,
			wantData: authFailed,
		},
		{
			name:     "Login, deactivated account",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"username": "numbskull", "password": "S3cretPwd!"}`),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "Login ok",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"username": "janedoe", "password": "S3cretPwd!"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "Login ok, by email",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"username": "janedoe@test.soko", "password": "S3cretPwd!"}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var tokens AuthTokens
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))
				assert.NotEmpty(t, tokens.Access)
				assert.NotEmpty(t, tokens.Refresh)
			}
		})
	}

	usr, err := app.usrSvc.GetByUsername("janedoe")
	assert.NoError(t, err)
	assert.False(t, usr.LastLogin.IsZero())
}

func TestUserLogout(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.StudentRoles, true)
	access := app.getToken(t, usr)
	refresh := app.getRefreshToken(t, usr)

	invalidRefresh := marchallObj(t, httpErr{Error: "invalid refresh token"})
	tests := []httpTest{
		{
			name:     "Logout, unauthenticated",
			method:   http.MethodPost,
			path:     "/v1/users/logout",
			body:     marchallObj(t, RefreshRequest{Refresh: refresh}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "Logout, garbage refresh token",
			method:   http.MethodPost,
			path:     "/v1/users/logout",
			body:     []byte(`{"refresh": "not.a.token"}`),
			token:    access,
			wantCode: http.StatusBadRequest,
			wantData: invalidRefresh,
		},
		{
			// an access token is not a refresh token
			name:     "Logout, access token presented as refresh",
			method:   http.MethodPost,
			path:     "/v1/users/logout",
			body:     marchallObj(t, RefreshRequest{Refresh: access}),
			token:    access,
			wantCode: http.StatusBadRequest,
			wantData: invalidRefresh,
		},
		{
			name:     "Logout ok",
			method:   http.MethodPost,
			path:     "/v1/users/logout",
			body:     marchallObj(t, RefreshRequest{Refresh: refresh}),
			token:    access,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "Logout, already revoked",
			method:   http.MethodPost,
			path:     "/v1/users/logout",
			body:     marchallObj(t, RefreshRequest{Refresh: refresh}),
			token:    access,
			wantCode: http.StatusBadRequest,
			wantData: invalidRefresh,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the access token keeps working until it expires on its own
	req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", access)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserTokenRefresh(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.StudentRoles, true)
	numb := app.createUser(t, "Numb Skull", "numbskull", "numbskull@test.soko", "S3cretPwd!", user.StudentRoles, false)
	refresh := app.getRefreshToken(t, usr)
	numbRefresh := app.getRefreshToken(t, numb)

	invalidRefresh := marchallObj(t, httpErr{Error: "invalid refresh token"})
	tests := []httpTest{
		{
			name:     "Token refresh, no data",
			method:   http.MethodPost,
			path:     "/v1/users/token-refresh",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Token refresh, garbage token",
			method:   http.MethodPost,
			path:     "/v1/users/token-refresh",
			body:     []byte(`{"refresh": "not.a.token"}`),
			wantCode: http.StatusBadRequest,
			wantData: invalidRefresh,
		},
		{
			name:     "Token refresh, deactivated account",
			method:   http.MethodPost,
			path:     "/v1/users/token-refresh",
			body:     marchallObj(t, RefreshRequest{Refresh: numbRefresh}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "Token refresh ok",
			method:   http.MethodPost,
			path:     "/v1/users/token-refresh",
			body:     marchallObj(t, RefreshRequest{Refresh: refresh}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp AccessTokenResponse
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Access)

				// the new access token is usable
				req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", resp.Access)
				app.server.ServeHTTP(rec, req)
				assert.Equal(t, http.StatusOK, rec.Code)
			}
		})
	}

	// a revoked refresh token can no longer mint access tokens
	access := app.getToken(t, usr)
	req, rec := newAuthRequest(http.MethodPost, "/v1/users/logout", access, marchallObj(t, RefreshRequest{Refresh: refresh}))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newRequest(http.MethodPost, "/v1/users/token-refresh", marchallObj(t, RefreshRequest{Refresh: refresh}))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), invalidRefresh)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestUserMe(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.StudentRoles, true)

	tests := []httpTest{
		{
			name:     "Me, unauthenticated",
			method:   http.MethodGet,
			path:     "/v1/users/me",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "Me ok",
			method:   http.MethodGet,
			path:     "/v1/users/me",
			token:    app.getToken(t, usr),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, usr),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestUserPasswordReset(t *testing.T) {
	app := setup(t)
	app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.StudentRoles, true)

	successBody := marchallObj(t, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
	tests := []httpTest{
		{
			name:     "Password reset, invalid email",
			method:   http.MethodPost,
			path:     "/v1/users/password-reset",
			body:     []byte(`{"email": "not-an-email"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			// same response whether the account exists or not
			name:     "Password reset, unknown email",
			method:   http.MethodPost,
			path:     "/v1/users/password-reset",
			body:     []byte(`{"email": "unknown@test.soko"}`),
			wantCode: http.StatusOK,
			wantData: successBody,
		},
		{
			name:     "Password reset ok",
			method:   http.MethodPost,
			path:     "/v1/users/password-reset",
			body:     []byte(`{"email": "janedoe@test.soko"}`),
			wantCode: http.StatusOK,
			wantData: successBody,
		},
		{
			name:     "Password reset confirm, bad token",
			method:   http.MethodPost,
			path:     "/v1/users/password-reset-confirm",
			body:     []byte(`{"uid": "bogus", "token": "bogus", "password": "NewS3cret!", "password_confirm": "NewS3cret!"}`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
