package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/localmarket/marketplace/internal/models"
	"github.com/localmarket/marketplace/internal/mykafka"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// CartLine is one cart row joined with its product, the shape GetCart returns.
type CartLine struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	Quantity    uint    `json:"quantity"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	PicturePath string  `json:"picture_path"`
}

// AddToCart accumulates quantity when the (user, product) line already exists
// and inserts a new line otherwise.
func (h *CartHandler) AddToCart(c echo.Context) error {
	var req struct {
		UserID    uint `json:"user_id"`
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and product_id are required"})
	}
	if req.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be a positive integer"})
	}

	err := h.DB.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", req.UserID, req.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", req.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&models.CartItem{
			UserID:    req.UserID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}).Error
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publishEvent(c, h.Producer, mykafka.TopicCartEvents, fmt.Sprint(req.UserID), map[string]any{
		"type":       "cart_item_added",
		"user_id":    req.UserID,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Item added to cart"})
}

// UpdateCartItem overwrites the quantity of an existing line.
func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return err
	}
	productID, err := parseUintParam(c, "itemId")
	if err != nil {
		return err
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be a positive integer"})
	}

	var item models.CartItem
	if err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Cart item not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	item.Quantity = req.Quantity
	if err := h.DB.WithContext(c.Request().Context()).Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publishEvent(c, h.Producer, mykafka.TopicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":       "cart_item_updated",
		"user_id":    userID,
		"product_id": productID,
		"quantity":   item.Quantity,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message":         "Cart item updated",
		"updatedCartItem": item,
	})
}

// DeleteCartItem removes one line entirely.
func (h *CartHandler) DeleteCartItem(c echo.Context) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return err
	}
	productID, err := parseUintParam(c, "itemId")
	if err != nil {
		return err
	}

	var item models.CartItem
	if err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Cart item not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.WithContext(c.Request().Context()).Delete(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publishEvent(c, h.Producer, mykafka.TopicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":       "cart_item_deleted",
		"user_id":    userID,
		"product_id": productID,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message":         "Cart item deleted",
		"deletedCartItem": item,
	})
}

// GetCart returns the user's lines joined with product data plus the city of
// the user's address. An empty cart is a 404: callers treat "no cart" and
// "empty cart" identically.
func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return err
	}

	var lines []CartLine
	if err := h.DB.WithContext(c.Request().Context()).
		Table("cart_items").
		Select("cart_items.id, cart_items.product_id, cart_items.quantity, products.name, products.price, products.description, products.picture_path").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Scan(&lines).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(lines) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Cart is empty"})
	}

	var city string
	var addr models.Address
	if err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ?", userID).
		Order("id ASC").
		First(&addr).Error; err == nil {
		city = addr.City
	}

	return c.JSON(http.StatusOK, echo.Map{
		"cartItems": lines,
		"city":      city,
	})
}
