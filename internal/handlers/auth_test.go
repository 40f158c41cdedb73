package handlers

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/localmarket/marketplace/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]string{"name": "Ada", "email": "ada@example.com", "password": "s3cret"}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/users/register", body)
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "User Registered Successfully", decodeBody(t, rec)["message"])

	rec, c = env.doJSONRequest(http.MethodPost, "/api/users/login", map[string]string{
		"email": "ada@example.com", "password": "s3cret",
	})
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	require.NotEmpty(t, resp["token"])
	require.NotEmpty(t, resp["refresh_token"])

	var stored models.RefreshToken
	require.NoError(t, env.DB.First(&stored).Error)
	require.Equal(t, uint(1), stored.UserID)
	require.False(t, stored.Revoked)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("Ada", "ada@example.com")

	body := map[string]string{"name": "Ada", "email": "ada@example.com", "password": "s3cret"}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/users/register", body)
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/users/register", map[string]string{"email": "x@example.com"})
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]string{"name": "Ada", "email": "ada@example.com", "password": "s3cret"}
	_, c := env.doJSONRequest(http.MethodPost, "/api/users/register", body)
	require.NoError(t, env.Auth.Register(c))

	_, c = env.doJSONRequest(http.MethodPost, "/api/users/login", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	})
	err := env.Auth.Login(c)
	require.Error(t, err)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]string{"name": "Ada", "email": "ada@example.com", "password": "s3cret"}
	_, c := env.doJSONRequest(http.MethodPost, "/api/users/register", body)
	require.NoError(t, env.Auth.Register(c))

	rec, c := env.doJSONRequest(http.MethodPost, "/api/users/login", map[string]string{
		"email": "ada@example.com", "password": "s3cret",
	})
	require.NoError(t, env.Auth.Login(c))

	refresh := decodeBody(t, rec)["refresh_token"].(string)

	rec, c = env.doJSONRequest(http.MethodPost, "/api/users/logout", nil)
	c.Request().AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh, Path: "/"})
	require.NoError(t, env.Auth.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.RefreshToken
	require.NoError(t, env.DB.Where("token = ?", refresh).First(&stored).Error)
	require.True(t, stored.Revoked)
}
