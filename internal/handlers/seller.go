package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/localmarket/marketplace/internal/llm"
	"github.com/localmarket/marketplace/internal/logging"
	"github.com/localmarket/marketplace/internal/models"
)

// Pricer is what the recommendation endpoint needs from the LLM client.
type Pricer interface {
	RecommendPrice(ctx context.Context, p llm.ProductInfo) (*llm.Recommendation, error)
}

type SellerHandler struct {
	DB        *gorm.DB
	Pricer    Pricer
	UploadDir string
}

// RegisterSeller accepts a multipart form: name, info, location and a
// sellerImage file.
func (h *SellerHandler) RegisterSeller(c echo.Context) error {
	name := c.FormValue("name")
	info := c.FormValue("info")
	location := c.FormValue("location")
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	file, err := c.FormFile("sellerImage")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No file uploaded"})
	}
	picturePath, err := saveUpload(file, filepath.Join(h.UploadDir, "sellers"))
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("upload save failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to insert seller."})
	}

	seller := models.Seller{
		Name:        name,
		Info:        info,
		Location:    location,
		PicturePath: picturePath,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&seller).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Seller added successfully.",
		"seller":  seller,
	})
}

func (h *SellerHandler) GetSeller(c echo.Context) error {
	id, err := parseUintParam(c, "sellerId")
	if err != nil {
		return err
	}

	var seller models.Seller
	if err := h.DB.WithContext(c.Request().Context()).First(&seller, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Seller not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, seller)
}

// Earnings aggregates sold quantities against current product prices. Order
// items store no price snapshot, so these figures follow repricing.
func (h *SellerHandler) Earnings(c echo.Context) error {
	sellerID, err := parseUintParam(c, "sellerId")
	if err != nil {
		return err
	}

	var seller models.Seller
	if err := h.DB.WithContext(c.Request().Context()).First(&seller, sellerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Seller not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var out struct {
		TotalEarnings float64 `json:"total_earnings"`
		ItemsSold     int64   `json:"items_sold"`
		Orders        int64   `json:"orders"`
	}
	if err := h.DB.WithContext(c.Request().Context()).
		Raw(`SELECT
				COALESCE(SUM(order_items.quantity * products.price), 0) AS total_earnings,
				COALESCE(SUM(order_items.quantity), 0) AS items_sold,
				COUNT(DISTINCT order_items.order_id) AS orders
			FROM order_items
			JOIN products ON products.id = order_items.product_id
			WHERE products.seller_id = ?`, sellerID).
		Scan(&out).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, out)
}

// PriceRecommendation asks the LLM for a suggested price, feeding it the
// product and the average price in its category.
func (h *SellerHandler) PriceRecommendation(c echo.Context) error {
	sellerID, err := parseUintParam(c, "sellerId")
	if err != nil {
		return err
	}
	productID, err := parseUintParam(c, "productId")
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.WithContext(c.Request().Context()).
		Where("id = ? AND seller_id = ?", productID, sellerID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var avg struct {
		Avg float64
	}
	if err := h.DB.WithContext(c.Request().Context()).
		Raw(`SELECT COALESCE(AVG(price), 0) AS avg FROM products WHERE category_id = ?`, product.CategoryID).
		Scan(&avg).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.Pricer == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Price recommendation unavailable"})
	}

	rec, err := h.Pricer.RecommendPrice(c.Request().Context(), llm.ProductInfo{
		Name:            product.Name,
		Description:     product.Description,
		CurrentPrice:    product.Price,
		CategoryAverage: avg.Avg,
	})
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("price recommendation failed", "product_id", product.ID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Price recommendation unavailable"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"product_id":        product.ID,
		"current_price":     product.Price,
		"recommended_price": rec.RecommendedPrice,
		"rationale":         rec.Rationale,
	})
}
