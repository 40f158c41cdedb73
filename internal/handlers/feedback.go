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

type FeedbackHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *FeedbackHandler) CreateFeedback(c echo.Context) error {
	var req struct {
		UserID    uint   `json:"user_id"`
		ProductID uint   `json:"product_id"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and product_id are required"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}

	var product models.Product
	if err := h.DB.WithContext(c.Request().Context()).First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	fb := models.Feedback{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&fb).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publishEvent(c, h.Producer, mykafka.TopicProductEvents, fmt.Sprint(req.UserID), map[string]any{
		"type":       "feedback_created",
		"product_id": req.ProductID,
		"rating":     req.Rating,
	})
	return c.JSON(http.StatusCreated, echo.Map{"message": "Feedback added successfully"})
}

func (h *FeedbackHandler) ListFeedback(c echo.Context) error {
	productID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var items []models.Feedback
	if err := h.DB.WithContext(c.Request().Context()).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}
