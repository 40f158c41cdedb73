package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/localmarket/marketplace/internal/logging"
	"github.com/localmarket/marketplace/internal/models"
	"github.com/localmarket/marketplace/internal/mykafka"
	"github.com/localmarket/marketplace/internal/service/search"
	"github.com/localmarket/marketplace/internal/util"
)

type ProductHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	ES        *elasticsearch.Client
	ESIndex   string
	UploadDir string
}

// CreateProduct accepts a multipart form: name, price, description, seller_id,
// category_id and a productImage file stored under UploadDir/product.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	name := c.FormValue("name")
	description := c.FormValue("description")
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil || price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be a positive number"})
	}
	sellerID, err := strconv.Atoi(c.FormValue("seller_id"))
	if err != nil || sellerID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seller_id is required"})
	}
	categoryID, _ := strconv.Atoi(c.FormValue("category_id"))
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	var seller models.Seller
	if err := h.DB.WithContext(c.Request().Context()).First(&seller, sellerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Seller not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	file, err := c.FormFile("productImage")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No file uploaded"})
	}
	picturePath, err := saveUpload(file, filepath.Join(h.UploadDir, "product"))
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("upload save failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	product := models.Product{
		Name:        name,
		Description: description,
		Price:       price,
		PicturePath: picturePath,
		SellerID:    uint(sellerID),
		CategoryID:  uint(categoryID),
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.ES != nil {
		if err := search.IndexProduct(c.Request().Context(), h.ES, h.ESIndex, &product); err != nil {
			logging.FromContext(c.Request().Context()).Error("es index failed", "product_id", product.ID, "error", err)
		}
	}

	publishEvent(c, h.Producer, mykafka.TopicProductEvents, fmt.Sprint(product.SellerID), map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"seller_id":  product.SellerID,
	})
	return c.JSON(http.StatusCreated, echo.Map{"message": "Product added successfully"})
}

// GetProducts is the filtered, paginated catalog listing.
// Filters: category, search (name/description substring), location (seller
// location), price_min, price_max. offset = (page-1)*limit.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Product{})

	if cat := c.QueryParam("category"); cat != "" {
		catID, err := strconv.Atoi(cat)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
		}
		q = q.Where("products.category_id = ?", catID)
	}
	if s := c.QueryParam("search"); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", pattern, pattern)
	}
	if loc := c.QueryParam("location"); loc != "" {
		q = q.Joins("JOIN sellers ON sellers.id = products.seller_id").
			Where("sellers.location = ?", loc)
	}
	if v := c.QueryParam("price_min"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price_min"})
		}
		q = q.Where("products.price >= ?", min)
	}
	if v := c.QueryParam("price_max"); v != "" {
		max, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price_max"})
		}
		q = q.Where("products.price <= ?", max)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var items []models.Product
	if err := q.Order("products.id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": util.TotalPages(total, limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.WithContext(c.Request().Context()).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetCategories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.WithContext(c.Request().Context()).Order("name ASC").Find(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, categories)
}

// saveUpload stores one multipart file under dir with a random name, keeping
// the original extension, and returns the stored path.
func saveUpload(file *multipart.FileHeader, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(file.Filename)
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return dstPath, nil
}
