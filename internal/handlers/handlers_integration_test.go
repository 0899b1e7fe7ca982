package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"kelas/internal/handlers"
	"kelas/internal/middleware"
	"kelas/internal/models"
	"kelas/internal/repositories"
	"kelas/internal/services"
	"kelas/pkg/paygateway"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test_jwt_secret"

// flakyEnroller fails enrollment into the listed courses.
type flakyEnroller struct {
	*services.EnrollmentService
	failing map[string]bool
}

func (e *flakyEnroller) Enroll(ctx context.Context, userID, courseID, orderID string) (*models.Enrollment, error) {
	if e.failing[courseID] {
		return nil, errors.New("enrollment backend unavailable")
	}
	return e.EnrollmentService.Enroll(ctx, userID, courseID, orderID)
}

type testEnv struct {
	app         *fiber.App
	db          *gorm.DB
	auth        *services.AuthService
	gateway     *paygateway.OfflineClient
	courses     *services.CourseService
	enroller    *flakyEnroller
	enrollments *services.EnrollmentService
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	// One database per test
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := repositories.OpenDatabase("sqlite", dsn)
	require.NoError(t, err)

	userRepo := repositories.NewGORMUserRepository(db)
	courseRepo := repositories.NewGORMCourseRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	enrollmentRepo := repositories.NewGORMEnrollmentRepository(db)

	gateway := paygateway.NewOfflineClient("rzp_test_key", "test_key_secret")
	authService := services.NewAuthService(userRepo, testJWTSecret, time.Hour)
	courseService := services.NewCourseService(courseRepo, "INR")
	enrollmentService := services.NewEnrollmentService(enrollmentRepo)
	cartService := services.NewCartService(cartRepo, courseRepo, enrollmentService)
	enroller := &flakyEnroller{EnrollmentService: enrollmentService, failing: map[string]bool{}}
	checkoutService := services.NewCheckoutService(services.CheckoutDeps{
		Orders:   orderRepo,
		Courses:  courseRepo,
		Cart:     cartService,
		Enroller: enroller,
		Gateway:  gateway,
	}, services.CheckoutConfig{Currency: "INR"})

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	auth := middleware.AuthRequired(authService)

	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewCourseHandler(courseService).RegisterRoutes(apiV1, auth)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1, auth)
	handlers.NewCheckoutHandler(checkoutService).RegisterRoutes(apiV1, auth)
	handlers.NewOrderHandler(services.NewOrderService(orderRepo)).RegisterRoutes(apiV1, auth)
	handlers.NewEnrollmentHandler(enrollmentService).RegisterRoutes(apiV1, auth)

	return &testEnv{
		app:         app,
		db:          db,
		auth:        authService,
		gateway:     gateway,
		courses:     courseService,
		enroller:    enroller,
		enrollments: enrollmentService,
	}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

// registerAndLogin creates a student account and returns its token.
func (e *testEnv) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	resp, _ := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	admin := &models.User{Username: "admin", Email: "admin@example.com", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, repositories.NewGORMUserRepository(e.db).Create(context.Background(), admin))
	token, err := e.auth.IssueToken(admin)
	require.NoError(t, err)
	return token
}

func (e *testEnv) seedCourse(t *testing.T, slug string, price int64) string {
	t.Helper()
	course := &models.Course{Title: "Course " + slug, Slug: slug, Price: price, Published: true}
	require.NoError(t, e.courses.CreateCourse(context.Background(), course))
	return course.ID
}

func (e *testEnv) checkout(t *testing.T, token string) (orderID, gatewayOrderID string) {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/v1/checkout", token, map[string]string{
		"name":  "Test Buyer",
		"email": "buyer@example.com",
		"phone": "+911234567890",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["orderId"].(string), body["gatewayOrderId"].(string)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)
	env.registerAndLogin(t, "testuser")

	// Duplicate registration
	resp, body := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "testuser",
		"email":    "other@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "User already exists", body["error"])

	// Invalid credentials
	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Validation failure
	resp, body = env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "ab",
		"email":    "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["error"])
	assert.Contains(t, body["errors"], "Email")
}

func TestCourseAdminRoutes(t *testing.T) {
	env := setupApp(t)
	student := env.registerAndLogin(t, "student")
	admin := env.adminToken(t)

	course := map[string]interface{}{
		"title":     "Go for Backend Engineers",
		"slug":      "go-backend",
		"price":     49900,
		"published": true,
	}
	resp, _ := env.do(t, http.MethodPost, "/api/v1/courses", student, course)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, created := env.do(t, http.MethodPost, "/api/v1/courses", admin, course)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	courseID := created["id"].(string)
	assert.Equal(t, "INR", created["currency"])

	resp, _ = env.do(t, http.MethodPost, "/api/v1/courses", admin, course)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, got := env.do(t, http.MethodGet, "/api/v1/courses/"+courseID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "go-backend", got["slug"])

	course["published"] = false
	resp, _ = env.do(t, http.MethodPut, "/api/v1/courses/"+courseID, admin, course)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Drafts are hidden from the public catalog
	resp, _ = env.do(t, http.MethodGet, "/api/v1/courses/"+courseID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/courses/"+courseID, admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = env.do(t, http.MethodDelete, "/api/v1/courses/"+courseID, admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCartRoutes(t *testing.T) {
	env := setupApp(t)
	token := env.registerAndLogin(t, "student")
	c1 := env.seedCourse(t, "course-one", 100)
	c2 := env.seedCourse(t, "course-two", 250)

	resp, _ := env.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, item := env.do(t, http.MethodPost, "/api/v1/cart", token, map[string]string{"courseId": c1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/v1/cart", token, map[string]string{"courseId": c1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/v1/cart", token, map[string]string{"courseId": c2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/v1/cart", token, map[string]string{"courseId": uuid.New().String()})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, cart := env.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, cart["items"], 2)
	assert.Equal(t, float64(350), cart["total"])

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/cart/"+item["id"].(string), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = env.do(t, http.MethodDelete, "/api/v1/cart/"+item["id"].(string), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, cart = env.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Len(t, cart["items"], 0)
}

func TestCheckoutAndVerify(t *testing.T) {
	env := setupApp(t)
	token := env.registerAndLogin(t, "buyer")
	c1 := env.seedCourse(t, "course-one", 49900)
	c2 := env.seedCourse(t, "course-two", 19900)

	// Empty cart
	resp, body := env.do(t, http.MethodPost, "/api/v1/checkout", token, map[string]string{
		"name": "Test Buyer", "email": "buyer@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cart is empty", body["error"])

	env.do(t, http.MethodPost, "/api/v1/cart", token, map[string]string{"courseId": c1})
	env.do(t, http.MethodPost, "/api/v1/cart", token, map[string]string{"courseId": c2})
	orderID, gatewayOrderID := env.checkout(t, token)

	resp, order := env.do(t, http.MethodGet, "/api/v1/orders/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PENDING", order["status"])
	assert.Equal(t, float64(69800), order["amount"])

	// Tampered signature leaves everything untouched
	resp, body = env.do(t, http.MethodPost, "/api/v1/checkout/verify", token, map[string]string{
		"orderId":   orderID,
		"paymentId": "pay_1",
		"signature": "bogus-signature",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid payment signature", body["error"])
	_, order = env.do(t, http.MethodGet, "/api/v1/orders/"+orderID, token, nil)
	assert.Equal(t, "PENDING", order["status"])
	_, cart := env.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Len(t, cart["items"], 2)

	// A course added after checkout stays in the cart
	c3 := env.seedCourse(t, "course-three", 9900)
	env.do(t, http.MethodPost, "/api/v1/cart", token, map[string]string{"courseId": c3})

	verify := map[string]string{
		"orderId":   orderID,
		"paymentId": "pay_1",
		"signature": env.gateway.Sign(gatewayOrderID, "pay_1"),
	}
	resp, body = env.do(t, http.MethodPost, "/api/v1/checkout/verify", token, verify)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Payment verified successfully", body["message"])

	_, order = env.do(t, http.MethodGet, "/api/v1/orders/"+orderID, token, nil)
	assert.Equal(t, "PAID", order["status"])
	assert.Equal(t, "pay_1", order["payment_id"])
	assert.NotNil(t, order["fulfilled_at"])

	enrolled, err := env.enrollments.ListForUser(context.Background(), order["user_id"].(string))
	require.NoError(t, err)
	assert.Len(t, enrolled, 2)

	_, cart = env.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	items := cart["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, c3, items[0].(map[string]interface{})["course_id"])

	// Replaying the verification is a conflict, not a second payment
	resp, _ = env.do(t, http.MethodPost, "/api/v1/checkout/verify", token, verify)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Enrolled courses cannot be added again
	resp, _ = env.do(t, http.MethodPost, "/api/v1/cart", token, map[string]string{"courseId": c1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestVerifyRejections(t *testing.T) {
	env := setupApp(t)
	owner := env.registerAndLogin(t, "owner")
	other := env.registerAndLogin(t, "other")
	c1 := env.seedCourse(t, "course-one", 100)

	env.do(t, http.MethodPost, "/api/v1/cart", owner, map[string]string{"courseId": c1})
	orderID, gatewayOrderID := env.checkout(t, owner)
	signature := env.gateway.Sign(gatewayOrderID, "pay_1")

	resp, _ := env.do(t, http.MethodPost, "/api/v1/checkout/verify", "", map[string]string{
		"orderId": orderID, "paymentId": "pay_1", "signature": signature,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Someone else's order, even with a valid signature
	resp, _ = env.do(t, http.MethodPost, "/api/v1/checkout/verify", other, map[string]string{
		"orderId": orderID, "paymentId": "pay_1", "signature": signature,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/api/v1/orders/"+orderID, other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/v1/checkout/verify", owner, map[string]string{
		"orderId": uuid.New().String(), "paymentId": "pay_1", "signature": signature,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Order not found", body["error"])

	resp, body = env.do(t, http.MethodPost, "/api/v1/checkout/verify", owner, map[string]string{
		"orderId": orderID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["error"])

	_, order := env.do(t, http.MethodGet, "/api/v1/orders/"+orderID, owner, nil)
	assert.Equal(t, "PENDING", order["status"])
}

func TestVerifyPartialEnrollment(t *testing.T) {
	env := setupApp(t)
	token := env.registerAndLogin(t, "buyer")
	c1 := env.seedCourse(t, "course-one", 100)
	c2 := env.seedCourse(t, "course-two", 200)

	env.do(t, http.MethodPost, "/api/v1/cart", token, map[string]string{"courseId": c1})
	env.do(t, http.MethodPost, "/api/v1/cart", token, map[string]string{"courseId": c2})
	orderID, gatewayOrderID := env.checkout(t, token)

	env.enroller.failing[c1] = true
	verify := map[string]string{
		"orderId":   orderID,
		"paymentId": "pay_1",
		"signature": env.gateway.Sign(gatewayOrderID, "pay_1"),
	}
	resp, body := env.do(t, http.MethodPost, "/api/v1/checkout/verify", token, verify)
	require.Equal(t, http.StatusMultiStatus, resp.StatusCode)
	assert.Equal(t, "Some courses could not be enrolled", body["error"])
	assert.Equal(t, []interface{}{c1}, body["notEnrolledList"])

	_, order := env.do(t, http.MethodGet, "/api/v1/orders/"+orderID, token, nil)
	assert.Equal(t, "PAID", order["status"])
	assert.Nil(t, order["fulfilled_at"])

	_, cart := env.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Len(t, cart["items"], 0)

	// Resubmitting the same payment finishes the order
	delete(env.enroller.failing, c1)
	resp, body = env.do(t, http.MethodPost, "/api/v1/checkout/verify", token, verify)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Payment verified successfully", body["message"])

	resp, _ = env.do(t, http.MethodGet, "/api/v1/enrollments", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, order = env.do(t, http.MethodGet, "/api/v1/orders/"+orderID, token, nil)
	assert.NotNil(t, order["fulfilled_at"])
}
