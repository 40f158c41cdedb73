package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/localmarket/marketplace/internal/models"
)

func TestGetUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/users/4", nil)
	c.SetParamNames("id")
	c.SetParamValues("4")
	require.NoError(t, env.Users.GetUser(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("Ada", "ada@example.com")

	rec, c := env.doJSONRequest(http.MethodPut, "/api/users/1", map[string]string{"name": "Ada L."})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Users.UpdateUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var u models.User
	require.NoError(t, env.DB.First(&u, 1).Error)
	require.Equal(t, "Ada L.", u.Name)
	require.Equal(t, "ada@example.com", u.Email)
}

func TestCreateAndListAddresses(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("Ada", "ada@example.com")

	body := map[string]string{"street": "Main 1", "city": "Hamburg", "postal_code": "20095", "country": "DE"}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/users/address/1", body)
	c.SetParamNames("userId")
	c.SetParamValues("1")
	require.NoError(t, env.Users.CreateAddress(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/users/address/1", nil)
	c.SetParamNames("userId")
	c.SetParamValues("1")
	require.NoError(t, env.Users.GetAddresses(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "Hamburg", got[0].City)
}

func TestCreateAddressRequiresStreetAndCity(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("Ada", "ada@example.com")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/users/address/1", map[string]string{"street": "Main 1"})
	c.SetParamNames("userId")
	c.SetParamValues("1")
	require.NoError(t, env.Users.CreateAddress(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
