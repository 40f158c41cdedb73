package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/localmarket/marketplace/internal/config"
	"github.com/localmarket/marketplace/internal/models"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Auth     *AuthHandler
	Users    *UserHandler
	Products *ProductHandler
	Cart     *CartHandler
	Orders   *OrderHandler
	Sellers  *SellerHandler
	Feedback *FeedbackHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// One in-memory database per test; shared cache so every pooled
	// connection sees the same schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	uploadDir := t.TempDir()

	env := &testEnv{
		T:  t,
		E:  echo.New(),
		DB: db,

		Auth:     &AuthHandler{DB: db, JWTSecret: []byte("test-secret"), RefreshSecret: []byte("test-refresh")},
		Users:    &UserHandler{DB: db},
		Products: &ProductHandler{DB: db, UploadDir: uploadDir},
		Cart:     &CartHandler{DB: db},
		Orders:   &OrderHandler{DB: db},
		Sellers:  &SellerHandler{DB: db, UploadDir: uploadDir},
		Feedback: &FeedbackHandler{DB: db},
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return env
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) doMultipartRequest(method, path string, fields map[string]string, fileField, fileName string) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(env.T, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(env.T, err)
		_, err = io.WriteString(fw, "fake image bytes")
		require.NoError(env.T, err)
	}
	require.NoError(env.T, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (env *testEnv) seedUser(name, email string) models.User {
	env.T.Helper()
	u := models.User{Name: name, Email: email, PasswordHash: "x", Role: "user"}
	require.NoError(env.T, env.DB.Create(&u).Error)
	return u
}

func (env *testEnv) seedSeller(name, location string) models.Seller {
	env.T.Helper()
	s := models.Seller{Name: name, Location: location}
	require.NoError(env.T, env.DB.Create(&s).Error)
	return s
}

func (env *testEnv) seedProduct(id uint, name string, price float64, sellerID, categoryID uint) models.Product {
	env.T.Helper()
	p := models.Product{ID: id, Name: name, Price: price, SellerID: sellerID, CategoryID: categoryID}
	require.NoError(env.T, env.DB.Create(&p).Error)
	return p
}
