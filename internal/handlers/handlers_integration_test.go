package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"bhelpuri/internal/handlers"
	"bhelpuri/internal/middleware"
	"bhelpuri/internal/models"
	"bhelpuri/internal/repositories"
	"bhelpuri/internal/services"
	"bhelpuri/pkg/feed"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	app         *fiber.App
	authService *services.AuthService
	cartService *services.CartService
	orderRepo   repositories.OrderRepository
	orderFeed   *feed.Hub
)

// setupApp sets up a Fiber app for testing with in-memory SQLite and
// all handlers/services wired the same way main does.
func setupApp() error {
	// Configure Viper for testing
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// Initialize in-memory SQLite database
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	// Auto-migrate models
	if err := db.AutoMigrate(&models.User{}, &models.Order{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	// Initialize Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo = repositories.NewGORMOrderRepository(db)

	// Initialize Services (nil RabbitMQ client: no broker in tests)
	catalogService := services.NewCatalogService()
	cartService = services.NewCartService(catalogService)
	authService = services.NewAuthService(userRepo, jwtSecret)
	orderFeed = feed.NewHub()
	checkoutService := services.NewCheckoutService(orderRepo, cartService, orderFeed, nil)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	adminHandler := handlers.NewAdminHandler(orderRepo, orderFeed)

	app = fiber.New()
	apiV1 := app.Group("/api/v1")

	catalogHandler.RegisterRoutes(apiV1)
	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterSessionRoutes(protectedRoutes)
	cartHandler.RegisterRoutes(protectedRoutes)
	checkoutHandler.RegisterRoutes(protectedRoutes)

	adminRoutes := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired())
	adminHandler.RegisterRoutes(adminRoutes)

	return nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	if err := setupApp(); err != nil {
		fmt.Printf("Failed to set up test app: %v\n", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// doJSON performs a JSON request against the test app.
func doJSON(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	payload := make(map[string]interface{})
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		assert.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

// registerAndLogin creates an account and returns a session token.
func registerAndLogin(t *testing.T, email, password string) string {
	t.Helper()

	resp, _ := doJSON(t, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"email": email, "password": password,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, payload := doJSON(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": email, "password": password,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := payload["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func TestGetProductsIsPublic(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	raw, _ := io.ReadAll(resp.Body)
	assert.NoError(t, json.Unmarshal(raw, &products))
	assert.Len(t, products, 3)
	for _, p := range products {
		assert.Greater(t, p.Price, int64(0))
	}
}

func TestRegisterValidation(t *testing.T) {
	// Malformed email
	resp, _ := doJSON(t, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"email": "not-an-email", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Password below the minimum length
	resp, _ = doJSON(t, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"email": "short@college.edu", "password": "12345",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	registerAndLogin(t, "dup@college.edu", "password123")

	resp, payload := doJSON(t, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"email": "dup@college.edu", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, payload["message"], "already in use")
}

func TestLoginBadCredentials(t *testing.T) {
	registerAndLogin(t, "creds@college.edu", "password123")

	resp, wrongPw := doJSON(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "creds@college.edu", "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, unknown := doJSON(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "nosuch@college.edu", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Same message either way; the response must not say which part was wrong.
	assert.Equal(t, wrongPw["message"], unknown["message"])
}

func TestCartRequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCartFlow(t *testing.T) {
	token := registerAndLogin(t, "cart@college.edu", "password123")

	// Add the same product twice: quantities merge.
	resp, _ := doJSON(t, http.MethodPost, "/api/v1/cart/items", token, fiber.Map{"product_id": "1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, payload := doJSON(t, http.MethodPost, "/api/v1/cart/items", token, fiber.Map{"product_id": "1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), payload["count"])
	assert.Equal(t, float64(100), payload["total"])

	// Unknown product is rejected.
	resp, _ = doJSON(t, http.MethodPost, "/api/v1/cart/items", token, fiber.Map{"product_id": "404"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Quantity change replaces the count for the entry.
	resp, payload = doJSON(t, http.MethodPatch, "/api/v1/cart/items/1", token, fiber.Map{"quantity": 5})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(5), payload["count"])

	// Quantity zero removes the entry.
	resp, payload = doJSON(t, http.MethodPatch, "/api/v1/cart/items/1", token, fiber.Map{"quantity": 0})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), payload["count"])
	assert.Equal(t, float64(0), payload["total"])

	// Rebuild and clear.
	doJSON(t, http.MethodPost, "/api/v1/cart/items", token, fiber.Map{"product_id": "2"})
	resp, payload = doJSON(t, http.MethodDelete, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), payload["count"])
}

func TestCheckoutFlow(t *testing.T) {
	token := registerAndLogin(t, "checkout@college.edu", "password123")

	// Checkout with an empty cart is turned away before validation.
	resp, _ := doJSON(t, http.MethodPost, "/api/v1/checkout", token, fiber.Map{
		"name": "Ravi Kumar", "mobile": "9876543210", "hostel": "Ganga Hostel", "room": "B-214",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	doJSON(t, http.MethodPost, "/api/v1/cart/items", token, fiber.Map{"product_id": "1"})
	doJSON(t, http.MethodPost, "/api/v1/cart/items", token, fiber.Map{"product_id": "3"})

	// Invalid mobile fails with the mobile-specific message and keeps the cart.
	resp, payload := doJSON(t, http.MethodPost, "/api/v1/checkout", token, fiber.Map{
		"name": "Ravi Kumar", "mobile": "1234567890", "hostel": "Ganga Hostel", "room": "B-214",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid mobile number", payload["message"])
	_, cartState := doJSON(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, float64(2), cartState["count"])

	// Valid submission creates the order and clears the cart.
	resp, payload = doJSON(t, http.MethodPost, "/api/v1/checkout", token, fiber.Map{
		"name": "Ravi Kumar", "mobile": "9876543210", "hostel": "Ganga Hostel", "room": "B-214",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	order, ok := payload["order"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, float64(150), order["total"])
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, "Cash on Delivery", order["payment_method"])
	assert.Equal(t, "checkout@college.edu", order["user_email"])

	_, cartState = doJSON(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, float64(0), cartState["count"])
}

func TestAdminFeedAuthorization(t *testing.T) {
	customerToken := registerAndLogin(t, "customer@college.edu", "password123")

	// A plain customer is turned away from the admin feed.
	resp, _ := doJSON(t, http.MethodGet, "/api/v1/admin/orders", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Promote the account; the role claim is minted at login, so a
	// fresh session is needed for it to take effect.
	registerAndLogin(t, "staff@college.edu", "password123")
	assert.NoError(t, authService.PromoteToAdmin("staff@college.edu"))
	resp, payload := doJSON(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "staff@college.edu", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	adminToken, _ := payload["token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	adminResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, adminResp.StatusCode)

	var orders []models.Order
	raw, _ := io.ReadAll(adminResp.Body)
	assert.NoError(t, json.Unmarshal(raw, &orders))
	// Orders arrive newest first.
	for i := 1; i < len(orders); i++ {
		assert.False(t, orders[i-1].CreatedAt.Before(orders[i].CreatedAt))
	}
}

func TestMeAndLogout(t *testing.T) {
	token := registerAndLogin(t, "session@college.edu", "password123")

	resp, payload := doJSON(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "session@college.edu", payload["email"])
	assert.Equal(t, models.RoleCustomer, payload["role"])

	resp, _ = doJSON(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The revoked token no longer opens the session routes.
	resp, _ = doJSON(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordResetUniformOutcome(t *testing.T) {
	registerAndLogin(t, "forgetful@college.edu", "password123")

	knownResp, knownPayload := doJSON(t, http.MethodPost, "/api/v1/auth/password-reset", "", fiber.Map{
		"email": "forgetful@college.edu",
	})
	unknownResp, unknownPayload := doJSON(t, http.MethodPost, "/api/v1/auth/password-reset", "", fiber.Map{
		"email": "stranger@college.edu",
	})

	// Existing and non-existing accounts produce the same user-visible
	// outcome, so the endpoint cannot be used to enumerate accounts.
	assert.Equal(t, http.StatusOK, knownResp.StatusCode)
	assert.Equal(t, knownResp.StatusCode, unknownResp.StatusCode)
	assert.Equal(t, knownPayload["message"], unknownPayload["message"])
}
