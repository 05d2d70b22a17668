package handler

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/inkwell/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginIssuesSessionAndToken(t *testing.T) {
	env := setupTestAPI(t)
	env.createUser(t, "writer1", db.RoleWriter)

	w := env.serve(t, request{
		method: http.MethodPost,
		path:   "/api/login",
		body:   map[string]string{"username": "writer1", "password": "secret1"},
	}, env.api.Login)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "inkwell_test=")

	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "writer1", user["username"])
	assert.ElementsMatch(t, []any{db.RoleReader, db.RoleWriter}, user["roles"])
}

func TestLoginRejectsBadPasswordInRequestLanguage(t *testing.T) {
	env := setupTestAPI(t)
	env.createUser(t, "reader1")

	w := env.serve(t, request{
		method: http.MethodPost,
		path:   "/api/login",
		body:   map[string]string{"username": "reader1", "password": "wrong-password"},
	}, env.api.Login)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "用户名或密码错误", decode(t, w)["error"])

	w = env.serve(t, request{
		method:  http.MethodPost,
		path:    "/api/login",
		body:    map[string]string{"username": "reader1", "password": "wrong-password"},
		headers: map[string]string{"Accept-Language": "en-US,en;q=0.9"},
	}, env.api.Login)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", decode(t, w)["error"])
}

func TestAuthRequiredAcceptsBearerToken(t *testing.T) {
	env := setupTestAPI(t)
	writer := env.createUser(t, "writer1", db.RoleWriter)

	token, err := IssueToken(testJWTSecret, writer.UserID, time.Hour)
	require.NoError(t, err)

	w := env.serve(t, request{
		method:  http.MethodGet,
		path:    "/api/me",
		headers: map[string]string{"Authorization": "Bearer " + token},
	}, env.api.AuthRequired(), env.api.Me)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(writer.UserID), body["id"])
	assert.Equal(t, true, body["is_writer"])
	assert.Equal(t, false, body["is_admin"])
}

func TestAuthRequiredRejectsBadCredentials(t *testing.T) {
	env := setupTestAPI(t)
	writer := env.createUser(t, "writer1", db.RoleWriter)

	forged, err := IssueToken("some-other-secret", writer.UserID, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(testJWTSecret, writer.UserID, -time.Minute)
	require.NoError(t, err)
	unknownUser, err := IssueToken(testJWTSecret, 4242, time.Hour)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	cases := map[string]string{
		"missing":      "",
		"basic scheme": "Basic d3JpdGVyMTpzZWNyZXQx",
		"forged":       "Bearer " + forged,
		"expired":      "Bearer " + expired,
		"unknown user": "Bearer " + unknownUser,
		"no subject":   "Bearer " + noSubject,
	}
	for name, header := range cases {
		headers := map[string]string{}
		if header != "" {
			headers["Authorization"] = header
		}
		w := env.serve(t, request{method: http.MethodGet, path: "/api/me", headers: headers},
			env.api.AuthRequired(), env.api.Me)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestSessionCookieAuthenticatesFollowUpRequests(t *testing.T) {
	env := setupTestAPI(t)
	env.createUser(t, "writer1", db.RoleWriter)

	login := env.serve(t, request{
		method: http.MethodPost,
		path:   "/api/login",
		body:   map[string]string{"username": "writer1", "password": "secret1"},
	}, env.api.Login)
	require.Equal(t, http.StatusOK, login.Code)

	cookie := login.Result().Cookies()[0]
	w := env.serve(t, request{
		method:  http.MethodGet,
		path:    "/api/me",
		headers: map[string]string{"Cookie": cookie.Name + "=" + cookie.Value},
	}, env.api.AuthRequired(), env.api.Me)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["is_writer"])
}

func TestRoleGuards(t *testing.T) {
	env := setupTestAPI(t)
	reader := env.createUser(t, "reader1")
	writer := env.createUser(t, "writer1", db.RoleWriter)
	admin := env.createUser(t, "admin1", db.RoleAdmin)

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	cases := []struct {
		name   string
		guard  gin.HandlerFunc
		userID uint
		want   int
	}{
		{"reader cannot write", RequireWriter(), reader.UserID, http.StatusForbidden},
		{"writer can write", RequireWriter(), writer.UserID, http.StatusOK},
		{"admin can write", RequireWriter(), admin.UserID, http.StatusOK},
		{"writer is not admin", RequireAdmin(), writer.UserID, http.StatusForbidden},
		{"admin is admin", RequireAdmin(), admin.UserID, http.StatusOK},
	}
	for _, tc := range cases {
		token, err := IssueToken(testJWTSecret, tc.userID, time.Hour)
		require.NoError(t, err)
		w := env.serve(t, request{
			method:  http.MethodGet,
			path:    "/guarded",
			headers: map[string]string{"Authorization": "Bearer " + token},
		}, env.api.AuthRequired(), tc.guard, ok)
		assert.Equal(t, tc.want, w.Code, tc.name)
	}
}

func TestLogoutClosesEditSessions(t *testing.T) {
	env := setupTestAPI(t)
	writer := env.createUser(t, "writer1", db.RoleWriter)

	sess, err := env.manager.Open(t.Context(), writer, 0)
	require.NoError(t, err)

	token, err := IssueToken(testJWTSecret, writer.UserID, time.Hour)
	require.NoError(t, err)
	w := env.serve(t, request{
		method:  http.MethodPost,
		path:    "/api/logout",
		headers: map[string]string{"Authorization": "Bearer " + token},
	}, env.api.Logout)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, sess.Closed())
	assert.Equal(t, 0, env.manager.Len())
}

func TestIssueTokenSubject(t *testing.T) {
	raw, err := IssueToken(testJWTSecret, 42, time.Hour)
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(42), claims.Subject)

	_, err = IssueToken("", 42, time.Hour)
	assert.Error(t, err)
}
