package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/localmarket/marketplace/internal/logging"
	"github.com/localmarket/marketplace/internal/models"
	"github.com/localmarket/marketplace/internal/mykafka"
)

var errEmptyCart = errors.New("cart is empty")

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// Checkout converts the user's cart into an order atomically: one order row,
// one order_item per cart line, cart cleared. The transaction closure commits
// on success and rolls back on any error, so no partial order and no partially
// consumed cart is ever visible. Isolation is whatever the database provides
// by default; concurrent checkouts for the same user are not serialized here.
func (h *OrderHandler) Checkout(c echo.Context) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return err
	}

	var req struct {
		AddressID uint `json:"address_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.AddressID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "address_id is required"})
	}

	var order models.Order
	txErr := h.DB.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("user_id = ?", userID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return errEmptyCart
		}

		order = models.Order{
			UserID:    userID,
			AddressID: req.AddressID,
			Status:    models.OrderStatusPaymentComplete,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, it := range items {
			oi := models.OrderItem{
				OrderID:   order.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
			}
			if err := tx.Create(&oi).Error; err != nil {
				return err
			}
		}

		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})

	if errors.Is(txErr, errEmptyCart) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Cart is empty"})
	}
	if txErr != nil {
		logging.FromContext(c.Request().Context()).Error("checkout failed", "user_id", userID, "error", txErr)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	publishEvent(c, h.Producer, mykafka.TopicOrderEvents, fmt.Sprint(userID), map[string]any{
		"type":     "order_created",
		"user_id":  userID,
		"order_id": order.ID,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Checkout successful",
		"orderId": order.ID,
	})
}

// AdvanceStatus unconditionally moves an order to the terminal status. Calling
// it on an already-terminal order just re-sets the same value.
func (h *OrderHandler) AdvanceStatus(c echo.Context) error {
	orderID, err := parseUintParam(c, "orderId")
	if err != nil {
		return err
	}

	var order models.Order
	if err := h.DB.WithContext(c.Request().Context()).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	order.Status = models.OrderStatusComplete
	if err := h.DB.WithContext(c.Request().Context()).Save(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publishEvent(c, h.Producer, mykafka.TopicOrderEvents, fmt.Sprint(order.UserID), map[string]any{
		"type":     "order_completed",
		"order_id": order.ID,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Order updated",
		"order":   order,
	})
}

// OrderProjection is one order with its items, as returned by the listing
// endpoints. Item cost comes from the product's current price.
type OrderProjection struct {
	ID        uint                  `json:"id"`
	UserID    uint                  `json:"user_id"`
	AddressID uint                  `json:"address_id"`
	Status    string                `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	BuyerName string                `json:"buyer_name,omitempty"`
	City      string                `json:"city,omitempty"`
	Items     []OrderItemProjection `json:"items"`
}

type OrderItemProjection struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  uint    `json:"quantity"`
}

type orderRow struct {
	OrderID   uint
	UserID    uint
	AddressID uint
	Status    string
	CreatedAt time.Time
	BuyerName string
	City      string
	ProductID uint
	Name      string
	Price     float64
	Quantity  uint
}

// ListUserOrders returns the user's orders, newest first, with items grouped
// in application code rather than by a database-side JSON aggregate.
func (h *OrderHandler) ListUserOrders(c echo.Context) error {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return err
	}

	var rows []orderRow
	if err := h.DB.WithContext(c.Request().Context()).
		Table("orders").
		Select("orders.id AS order_id, orders.user_id, orders.address_id, orders.status, orders.created_at, order_items.product_id, order_items.quantity, products.name, products.price").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.user_id = ?", userID).
		Order("orders.created_at DESC, orders.id DESC").
		Scan(&rows).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, groupOrderRows(rows))
}

// ListSellerOrders returns every order containing at least one of the seller's
// products, with the buyer's name and city for fulfilment.
func (h *OrderHandler) ListSellerOrders(c echo.Context) error {
	sellerID, err := parseUintParam(c, "sellerId")
	if err != nil {
		return err
	}

	var rows []orderRow
	if err := h.DB.WithContext(c.Request().Context()).
		Table("orders").
		Select("orders.id AS order_id, orders.user_id, orders.address_id, orders.status, orders.created_at, order_items.product_id, order_items.quantity, products.name, products.price, users.name AS buyer_name, addresses.city").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN users ON users.id = orders.user_id").
		Joins("LEFT JOIN addresses ON addresses.id = orders.address_id").
		Where("products.seller_id = ?", sellerID).
		Order("orders.created_at DESC, orders.id DESC").
		Scan(&rows).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, groupOrderRows(rows))
}

// groupOrderRows folds the flat join result into one projection per order,
// preserving the row order (newest order first).
func groupOrderRows(rows []orderRow) []OrderProjection {
	out := make([]OrderProjection, 0)
	index := make(map[uint]int)

	for _, r := range rows {
		i, ok := index[r.OrderID]
		if !ok {
			out = append(out, OrderProjection{
				ID:        r.OrderID,
				UserID:    r.UserID,
				AddressID: r.AddressID,
				Status:    r.Status,
				CreatedAt: r.CreatedAt,
				BuyerName: r.BuyerName,
				City:      r.City,
				Items:     []OrderItemProjection{},
			})
			i = len(out) - 1
			index[r.OrderID] = i
		}
		out[i].Items = append(out[i].Items, OrderItemProjection{
			ProductID: r.ProductID,
			Name:      r.Name,
			Price:     r.Price,
			Quantity:  r.Quantity,
		})
	}
	return out
}
