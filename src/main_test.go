package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"pbs/src/common"
	"pbs/src/db"
	"pbs/src/lib"
	"pbs/src/middlewares"
	"pbs/src/models"
	"pbs/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_test_secret"

type TestSuite struct {
	suite.Suite
	DB     *gorm.DB
	Mock   sqlmock.Sqlmock
	Router *gin.Engine
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	mockDb, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDb}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

// fakeProcessor stands in for Stripe so checkout tests control the
// processor-reported outcome.
type fakeProcessor struct {
	customerID string
	result     *lib.ChargeResult
	chargeErr  error
}

func (f *fakeProcessor) FindOrCreateCustomer(ctx context.Context, email string, name string, phone string) (string, error) {
	return f.customerID, nil
}

func (f *fakeProcessor) CreateCardCharge(ctx context.Context, params *lib.ChargeParams) (*lib.ChargeResult, error) {
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	return f.result, nil
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", bookableDateValidatorFunc)
	}

	os.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	router := setupRouter()
	publicRoutes(router)
	authRoutes(router)
	paymentRoutes(router)
	stripeWebhookRoute(router)
	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized = userHandlers(authorized)
		authorized = orderHandlers(authorized)
		admin := authorized.Group("")
		admin.Use(middlewares.AdminRequired)
		{
			admin = productAdminHandlers(admin)
			admin = carouselAdminHandlers(admin)
			admin = userAdminHandlers(admin)
		}
	}
	s.Router = router
}

func (s *TestSuite) SetupTest() {
	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock
}

func (s *TestSuite) adminToken() string {
	token, err := signAuthToken(&models.User{ID: 1, Email: "admin@example.com", Role: types.ROLE_ADMIN})
	s.Require().NoError(err)
	return token
}

func (s *TestSuite) expectAuthUser(id uint, email string, role string) {
	rows := sqlmock.NewRows([]string{"id", "email", "role"}).AddRow(id, email, role)
	s.Mock.ExpectQuery(`SELECT (.+) FROM "users"`).WillReturnRows(rows)
}

func (s *TestSuite) request(method string, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

// signedStripeEvent wraps an event object payload with a signature header the
// webhook endpoint will accept.
func (s *TestSuite) signedStripeEvent(eventType string, object string) (string, string) {
	payload := fmt.Sprintf(`{"id":"evt_test_1","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, object)
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	header := fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
	return payload, header
}

func (s *TestSuite) webhookRequest(payload string, signature string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/webhook/stripe", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *TestSuite) TestPingRoute() {
	w := s.request(http.MethodGet, "/", nil, "")
	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *TestSuite) TestCreateBookingWithoutProduct() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	s.Mock.ExpectCommit()

	w := s.request(http.MethodPost, "/api/v1/bookings", gin.H{
		"name":  "Jane Doe",
		"email": "jane@example.com",
		"date":  "2030-06-01",
		"time":  "morning",
	}, "")

	assert.Equal(s.T(), http.StatusCreated, w.Code)
	body := w.Body.String()
	assert.Equal(s.T(), "pending", gjson.Get(body, "data.status").String())
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCreateBookingProductNotFound() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "products"`).
		WillReturnError(gorm.ErrRecordNotFound)
	s.Mock.ExpectRollback()

	w := s.request(http.MethodPost, "/api/v1/bookings", gin.H{
		"name":       "Jane Doe",
		"email":      "jane@example.com",
		"date":       "2030-06-01",
		"time":       "morning",
		"product_id": 99,
	}, "")

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
	// no insert should have happened
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCreateBookingReferencesProduct() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "products"`).WillReturnRows(s.productRow())
	s.Mock.ExpectQuery(`INSERT INTO "bookings"`).
		WithArgs("Jane Doe", "jane@example.com", "2030-06-01", "morning",
			3, "Full Session", "", "", "pending",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	s.Mock.ExpectCommit()

	w := s.request(http.MethodPost, "/api/v1/bookings", gin.H{
		"name":       "Jane Doe",
		"email":      "jane@example.com",
		"date":       "2030-06-01",
		"time":       "morning",
		"product_id": 3,
	}, "")

	assert.Equal(s.T(), http.StatusCreated, w.Code)
	assert.Equal(s.T(), "pending", gjson.Get(w.Body.String(), "data.status").String())
	// the insert carried the product id and defaulted the session name to
	// the product title
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCreateBookingRejectsPastDate() {
	w := s.request(http.MethodPost, "/api/v1/bookings", gin.H{
		"name":  "Jane Doe",
		"email": "jane@example.com",
		"date":  "2019-06-01",
		"time":  "morning",
	}, "")
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *TestSuite) productRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "price"}).
		AddRow(3, "Full Session", 45000)
}

func (s *TestSuite) TestPaymentDeclinedCreatesNothing() {
	lib.NewProcessor(&fakeProcessor{
		customerID: "cus_123",
		result: &lib.ChargeResult{
			Status:   types.PAYMENT_FAILED,
			Amount:   45000,
			Currency: "USD",
		},
	})
	s.Mock.ExpectQuery(`SELECT (.+) FROM "products"`).WillReturnRows(s.productRow())

	w := s.request(http.MethodPost, "/api/v1/payments", gin.H{
		"source_id":  "tok_visa",
		"product_id": 3,
		"amount":     45000,
		"user_name":  "Jane Doe",
		"user_email": "jane@example.com",
		"date":       "2030-06-01",
		"time":       "morning",
	}, "")

	assert.Equal(s.T(), http.StatusPaymentRequired, w.Code)
	assert.Equal(s.T(), "charge", gjson.Get(w.Body.String(), "step").String())
	// neither a Payment nor an Order row was written
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestPaymentCompletedUsesProcessorAmount() {
	// processor approves a different amount than the client submitted
	lib.NewProcessor(&fakeProcessor{
		customerID: "cus_123",
		result: &lib.ChargeResult{
			Status:        types.PAYMENT_COMPLETED,
			Amount:        45000,
			Currency:      "USD",
			ReferenceID:   "pi_test_1",
			PaymentMethod: "card",
		},
	})
	s.Mock.ExpectQuery(`SELECT (.+) FROM "products"`).WillReturnRows(s.productRow())
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`INSERT INTO "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	s.Mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	s.Mock.ExpectCommit()

	w := s.request(http.MethodPost, "/api/v1/payments", gin.H{
		"source_id":  "tok_visa",
		"product_id": 3,
		"amount":     99999,
		"user_name":  "Jane Doe",
		"user_email": "jane@example.com",
		"date":       "2030-06-01",
		"time":       "morning",
	}, "")

	assert.Equal(s.T(), http.StatusCreated, w.Code)
	body := w.Body.String()
	assert.Equal(s.T(), int64(45000), gjson.Get(body, "data.paid_amount").Int())
	assert.Equal(s.T(), "USD", gjson.Get(body, "data.currency").String())
	assert.Equal(s.T(), "pending", gjson.Get(body, "data.order_status").String())
	assert.Equal(s.T(), "COMPLETED", gjson.Get(body, "data.payment_status").String())
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestReconcileCreatesOrderForOrphanedPayment() {
	paymentId := uuid.New()
	metadata := []byte(`{"user_name":"Jane Doe","user_phone":"5551234567","date":"2030-06-01","time":"morning","address":"","note":""}`)
	s.Mock.ExpectQuery(`SELECT (.+) FROM "payments" LEFT JOIN orders`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "user_id", "user_email", "amount", "currency", "payment_method", "status", "metadata"}).
			AddRow(paymentId.String(), 3, nil, "jane@example.com", 45000, "USD", "card", "COMPLETED", metadata))
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "products"`).WillReturnRows(s.productRow())
	s.Mock.ExpectQuery(`INSERT INTO "orders"`).
		WithArgs(nil, 3, paymentId.String(), "Jane Doe", "jane@example.com", "(555) 123-4567",
			"Full Session", 45000, "2030-06-01", "morning", "", "pending", "USD", 45000,
			"card", "COMPLETED", "",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
	s.Mock.ExpectCommit()

	common.ReconcileOrphanedPayments()

	// the order snapshot comes from the payment row and its metadata
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestWebhookSkipsAlreadyRecordedPayment() {
	object := `{"id":"pi_test_1","amount":45000,"amount_received":45000,"currency":"usd","customer":"cus_123","receipt_email":"jane@example.com","metadata":{"product_id":"3"}}`
	payload, signature := s.signedStripeEvent("payment_intent.succeeded", object)

	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reference_id", "status"}).
			AddRow(uuid.NewString(), "pi_test_1", "COMPLETED"))
	s.Mock.ExpectCommit()

	w := s.webhookRequest(payload, signature)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	// the recorded charge is not inserted a second time
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestWebhookIgnoresIntentWithoutProduct() {
	object := `{"id":"pi_test_2","amount":45000,"currency":"usd","metadata":{}}`
	payload, signature := s.signedStripeEvent("payment_intent.succeeded", object)

	w := s.webhookRequest(payload, signature)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	// nothing touched the database
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCarouselReorderRollsBackOnFailure() {
	token := s.adminToken()
	s.expectAuthUser(1, "admin@example.com", types.ROLE_ADMIN)
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`UPDATE "carousel_images"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectExec(`UPDATE "carousel_images"`).
		WillReturnError(fmt.Errorf("connection reset"))
	s.Mock.ExpectRollback()

	w := s.request(http.MethodPatch, "/api/v1/carousel/reorder", gin.H{
		"ids": []uint{4, 2, 9},
	}, token)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	// the first update must not survive the failed second one
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestDeleteLastAdminRejected() {
	token := s.adminToken()
	s.expectAuthUser(1, "admin@example.com", types.ROLE_ADMIN)
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role"}).AddRow(1, "admin@example.com", types.ROLE_ADMIN))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.Mock.ExpectRollback()

	w := s.request(http.MethodDelete, "/api/v1/users/1", nil, token)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestDemoteLastAdminRejected() {
	token := s.adminToken()
	s.expectAuthUser(1, "admin@example.com", types.ROLE_ADMIN)
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role"}).AddRow(1, "admin@example.com", types.ROLE_ADMIN))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.Mock.ExpectRollback()

	w := s.request(http.MethodPut, "/api/v1/users/1", gin.H{"role": "user"}, token)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestExpiredResetTokenRejected() {
	expiry := time.Now().Add(-time.Hour)
	s.Mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "reset_token", "reset_token_expiry"}).
			AddRow(5, "jane@example.com", "deadbeef", expiry))
	// expired token clears on first sight
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`UPDATE "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()

	w := s.request(http.MethodPost, "/api/v1/auth/verify-reset-token", gin.H{"token": "deadbeef"}, "")

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestResetTokenSingleUse() {
	expiry := time.Now().Add(30 * time.Minute)
	s.Mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "reset_token", "reset_token_expiry"}).
			AddRow(5, "jane@example.com", "deadbeef", expiry))
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`UPDATE "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()

	w := s.request(http.MethodPost, "/api/v1/auth/reset-password", gin.H{
		"token":    "deadbeef",
		"password": "new-password-1",
	}, "")
	assert.Equal(s.T(), http.StatusOK, w.Code)

	// second attempt: the token row is gone
	s.Mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnError(gorm.ErrRecordNotFound)

	w = s.request(http.MethodPost, "/api/v1/auth/reset-password", gin.H{
		"token":    "deadbeef",
		"password": "new-password-2",
	}, "")
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestDeleteProductWithBookingsRejected() {
	token := s.adminToken()
	s.expectAuthUser(1, "admin@example.com", types.ROLE_ADMIN)
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "products"`).WillReturnRows(s.productRow())
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	s.Mock.ExpectRollback()

	w := s.request(http.MethodDelete, "/api/v1/products/3", nil, token)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.NoError(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestOrdersRequireAuth() {
	w := s.request(http.MethodGet, "/api/v1/orders", nil, "")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
