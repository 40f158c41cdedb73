package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/localmarket/marketplace/internal/models"
)

func TestAddToCartAccumulatesQuantity(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]uint{"user_id": 1, "product_id": 7, "quantity": 2}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/cart", body)
	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body["quantity"] = 3
	rec, c = env.doJSONRequest(http.MethodPost, "/api/cart", body)
	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.CartItem
	require.NoError(t, env.DB.Where("user_id = ?", 1).Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, uint(7), items[0].ProductID)
	require.Equal(t, uint(5), items[0].Quantity)
}

func TestAddToCartRejectsZeroQuantity(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]uint{"user_id": 1, "product_id": 7, "quantity": 0}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/cart", body)
	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCartItemOverwritesQuantity(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.DB.Create(&models.CartItem{UserID: 1, ProductID: 7, Quantity: 2}).Error)

	rec, c := env.doJSONRequest(http.MethodPut, "/api/cart/1/7", map[string]uint{"quantity": 5})
	c.SetParamNames("userId", "itemId")
	c.SetParamValues("1", "7")
	require.NoError(t, env.Cart.UpdateCartItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var item models.CartItem
	require.NoError(t, env.DB.Where("user_id = ? AND product_id = ?", 1, 7).First(&item).Error)
	require.Equal(t, uint(5), item.Quantity)

	resp := decodeBody(t, rec)
	require.Equal(t, "Cart item updated", resp["message"])
	require.NotNil(t, resp["updatedCartItem"])
}

func TestUpdateCartItemNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPut, "/api/cart/42/99", map[string]uint{"quantity": 5})
	c.SetParamNames("userId", "itemId")
	c.SetParamValues("42", "99")
	require.NoError(t, env.Cart.UpdateCartItem(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeBody(t, rec)
	require.Equal(t, "Cart item not found", resp["error"])
}

func TestDeleteCartItem(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.DB.Create(&models.CartItem{UserID: 1, ProductID: 7, Quantity: 2}).Error)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/cart/1/7", nil)
	c.SetParamNames("userId", "itemId")
	c.SetParamValues("1", "7")
	require.NoError(t, env.Cart.DeleteCartItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&count).Error)
	require.Zero(t, count)
}

func TestDeleteCartItemNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/cart/1/7", nil)
	c.SetParamNames("userId", "itemId")
	c.SetParamValues("1", "7")
	require.NoError(t, env.Cart.DeleteCartItem(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCartEmptyIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/cart/1", nil)
	c.SetParamNames("userId")
	c.SetParamValues("1")
	require.NoError(t, env.Cart.GetCart(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCartJoinsProductsAndCity(t *testing.T) {
	env := newTestEnv(t)

	seller := env.seedSeller("Mug Makers", "Hamburg")
	env.seedProduct(7, "Clay Mug", 12.5, seller.ID, 0)
	user := env.seedUser("Ada", "ada@example.com")
	require.NoError(t, env.DB.Create(&models.Address{UserID: user.ID, Street: "Main 1", City: "Hamburg"}).Error)
	require.NoError(t, env.DB.Create(&models.CartItem{UserID: user.ID, ProductID: 7, Quantity: 3}).Error)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/cart/1", nil)
	c.SetParamNames("userId")
	c.SetParamValues("1")
	require.NoError(t, env.Cart.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	require.Equal(t, "Hamburg", resp["city"])

	items, ok := resp["cartItems"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	require.Equal(t, "Clay Mug", line["name"])
	require.Equal(t, 12.5, line["price"])
	require.Equal(t, float64(3), line["quantity"])
}
