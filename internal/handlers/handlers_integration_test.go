package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"productsapi/internal/database"
	"productsapi/internal/handlers"
	"productsapi/internal/repositories"
	"productsapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupApp sets up a Fiber app with the product routes on a private in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	productService := services.NewProductService(repositories.NewGORMProductRepository(db))
	healthHandler := handlers.NewHealthHandler(nil)

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/", healthHandler.HandleAPIStatus)
	handlers.NewProductHandler(productService).RegisterRoutes(api)
	return app
}

// doJSON sends body as JSON (nil for no body) and decodes the JSON response.
func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func createProduct(t *testing.T, app *fiber.App, name string, price float64) map[string]any {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{"name": name, "price": price})
	require.Equal(t, http.StatusCreated, status)
	return body["data"].(map[string]any)
}

func errorMessages(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["errors"].([]any)
	require.True(t, ok, "body has no errors array: %v", body)
	msgs := make([]string, 0, len(raw))
	for _, e := range raw {
		msgs = append(msgs, e.(map[string]any)["msg"].(string))
	}
	return msgs
}

func TestAPIStatus(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"msg": "Desde API"}, body)
}

func TestCreateProduct(t *testing.T) {
	app := setupApp(t)

	t.Run("empty body reports every violation", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, []string{
			handlers.MsgEmptyName,
			handlers.MsgInvalidValue,
			handlers.MsgEmptyPrice,
			handlers.MsgInvalidPrice,
		}, errorMessages(t, body))
	})

	t.Run("no body at all", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/products", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Len(t, errorMessages(t, body), 4)
	})

	t.Run("price is not a number", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
			"name":  "Mouse - Testing",
			"price": "Hola",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, []string{handlers.MsgInvalidValue, handlers.MsgInvalidPrice}, errorMessages(t, body))
	})

	t.Run("price is negative", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
			"name":  "Mouse - Testing",
			"price": -50,
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, []string{handlers.MsgInvalidPrice}, errorMessages(t, body))
	})

	t.Run("valid product", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
			"name":  "Mouse - Testing",
			"price": 60,
		})
		assert.Equal(t, http.StatusCreated, status)
		assert.NotContains(t, body, "errors")
		require.Contains(t, body, "data")

		data := body["data"].(map[string]any)
		assert.NotZero(t, data["id"])
		assert.Equal(t, "Mouse - Testing", data["name"])
		assert.Equal(t, 60.0, data["price"])
		assert.Equal(t, true, data["availability"])
	})

	t.Run("price given as true", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
			"name":  "Mouse - Testing",
			"price": true,
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, []string{handlers.MsgInvalidValue}, errorMessages(t, body))
	})

	t.Run("padded price string", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
			"name":  "Mouse - Testing",
			"price": " 5",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, []string{handlers.MsgInvalidValue}, errorMessages(t, body))
	})

	t.Run("price without leading digit", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
			"name":  "Cable",
			"price": ".5",
		})
		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, 0.5, body["data"].(map[string]any)["price"])
	})

	t.Run("unparseable availability falls back to the default", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
			"name":         "Auriculares",
			"price":        25,
			"availability": "abc",
		})
		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, true, body["data"].(map[string]any)["availability"])
	})

	t.Run("form body is read as empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader("name=Mouse&price=60"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []string{
			handlers.MsgEmptyName,
			handlers.MsgInvalidValue,
			handlers.MsgEmptyPrice,
			handlers.MsgInvalidPrice,
		}, errorMessages(t, body))
	})

	t.Run("numeric string price and explicit availability", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
			"name":         "Teclado",
			"price":        "45.5",
			"availability": false,
		})
		assert.Equal(t, http.StatusCreated, status)
		data := body["data"].(map[string]any)
		assert.Equal(t, 45.5, data["price"])
		assert.Equal(t, false, data["availability"])
	})
}

func TestGetProducts(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])

	for i := 1; i <= 5; i++ {
		createProduct(t, app, fmt.Sprintf("Producto %d", i), float64(i*10))
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, status)
	data := body["data"].([]any)
	require.Len(t, data, 3)

	var ids []float64
	for _, item := range data {
		product := item.(map[string]any)
		assert.NotContains(t, product, "createdAt")
		assert.NotContains(t, product, "updatedAt")
		ids = append(ids, product["id"].(float64))
	}
	assert.Equal(t, []float64{5, 4, 3}, ids)
}

func TestGetProductByID(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Monitor", 300)

	t.Run("invalid id", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/api/products/not-valid-url", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, handlers.MsgInvalidID, errorMessages(t, body)[0])
	})

	t.Run("missing product", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/api/products/2000", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, handlers.MsgProductNotFound, body["error"])
	})

	t.Run("negative id is well formed but never found", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodGet, "/api/products/-1", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("existing product", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/products/%v", created["id"]), nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, created["id"], body["id"])
		assert.Equal(t, "Monitor", body["name"])
		assert.Contains(t, body, "createdAt")
	})
}

func TestUpdateProduct(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Alexa", 100)
	path := fmt.Sprintf("/api/products/%v", created["id"])
	valid := map[string]any{"name": "Alexa con pantalla", "price": 120, "availability": false}

	t.Run("invalid id", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPut, "/api/products/not-valid-url", valid)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, []string{handlers.MsgInvalidID}, errorMessages(t, body))
	})

	t.Run("empty body", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPut, path, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.NotContains(t, body, "data")
		assert.Equal(t, []string{
			handlers.MsgEmptyName,
			handlers.MsgInvalidValue,
			handlers.MsgEmptyPrice,
			handlers.MsgInvalidPrice,
			handlers.MsgInvalidAvailability,
		}, errorMessages(t, body))
	})

	t.Run("price must be greater than zero", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPut, path, map[string]any{
			"name": "Alexa con pantalla", "price": 0, "availability": true,
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, []string{handlers.MsgInvalidPrice}, errorMessages(t, body))
	})

	t.Run("availability must be boolean", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPut, path, map[string]any{
			"name": "Alexa con pantalla", "price": 120, "availability": "quizas",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, []string{handlers.MsgInvalidAvailability}, errorMessages(t, body))
	})

	t.Run("availability accepts only strict boolean forms", func(t *testing.T) {
		for _, v := range []any{"T", "t", "True", "TRUE", "F", "yes", 2} {
			status, body := doJSON(t, app, http.MethodPut, path, map[string]any{
				"name": "Alexa con pantalla", "price": 120, "availability": v,
			})
			assert.Equal(t, http.StatusBadRequest, status, "availability %v", v)
			assert.Equal(t, []string{handlers.MsgInvalidAvailability}, errorMessages(t, body))
		}

		status, body := doJSON(t, app, http.MethodPut, path, map[string]any{
			"name": "Alexa", "price": 100, "availability": "0",
		})
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, false, body["data"].(map[string]any)["availability"])

		status, body = doJSON(t, app, http.MethodPut, path, map[string]any{
			"name": "Alexa", "price": 100, "availability": "1",
		})
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["data"].(map[string]any)["availability"])
	})

	t.Run("missing product", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPut, "/api/products/2000", valid)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, handlers.MsgProductNotFound, body["error"])
		assert.NotContains(t, body, "data")
	})

	t.Run("overwrites every field", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPut, path, valid)
		assert.Equal(t, http.StatusOK, status)
		assert.NotContains(t, body, "errors")
		assert.NotContains(t, body, "error")

		data := body["data"].(map[string]any)
		assert.Equal(t, created["id"], data["id"])
		assert.Equal(t, "Alexa con pantalla", data["name"])
		assert.Equal(t, 120.0, data["price"])
		assert.Equal(t, false, data["availability"])

		_, fetched := doJSON(t, app, http.MethodGet, path, nil)
		assert.Equal(t, false, fetched["availability"])
	})
}

func TestUpdateAvailability(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Audifonos", 80)
	path := fmt.Sprintf("/api/products/%v", created["id"])

	t.Run("invalid id", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPatch, "/api/products/abc", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, handlers.MsgInvalidID, errorMessages(t, body)[0])
	})

	t.Run("missing product", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPatch, "/api/products/3000", map[string]any{"price": 130})
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, handlers.MsgProductNotFound, body["error"])
	})

	t.Run("toggles twice back to the original", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPatch, path, map[string]any{"price": 130})
		assert.Equal(t, http.StatusOK, status)
		data := body["data"].(map[string]any)
		assert.Equal(t, false, data["availability"])
		assert.Equal(t, "Audifonos", data["name"])
		assert.Equal(t, 80.0, data["price"])

		status, body = doJSON(t, app, http.MethodPatch, path, nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["data"].(map[string]any)["availability"])
	})
}

func TestDeleteProduct(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, "Silla", 150)
	path := fmt.Sprintf("/api/products/%v", created["id"])

	t.Run("invalid id", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodDelete, "/api/products/invalid-url", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, handlers.MsgInvalidID, errorMessages(t, body)[0])
	})

	t.Run("missing product", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodDelete, "/api/products/3000", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, handlers.MsgProductNotFound, body["error"])
	})

	t.Run("deletes and never resolves again", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, handlers.MsgProductDeleted, body["data"])

		status, _ = doJSON(t, app, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, status)

		next := createProduct(t, app, "Silla nueva", 150)
		assert.NotEqual(t, created["id"], next["id"])
	})
}
