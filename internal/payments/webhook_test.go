package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fahran-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "whsec_test_secret_123"

func setupWebhookTest(t *testing.T) (*WebhookHandler, *gorm.DB, *domain.Member) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Member{}, &domain.Share{}, &domain.MonthlyPayment{}, &domain.Transaction{},
	))
	m := &domain.Member{
		Name:       "arif",
		Email:      "arif@example.com",
		MemberType: domain.MemberTypeRegular,
	}
	require.NoError(t, db.Create(m).Error)
	require.NoError(t, db.Create(&domain.Share{
		MemberID:  m.MemberID,
		ShareType: domain.ShareTypeBase,
		Quantity:  2,
	}).Error)
	wh := &WebhookHandler{
		Service:       &Service{DB: db},
		WebhookSecret: testSecret,
	}
	return wh, db, m
}

func signPayload(payload []byte, secret string) string {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "." + string(payload)))
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func webhookApp(wh *WebhookHandler) *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/stripe/webhook", wh.HandleWebhook)
	return app
}

func duesIntentEvent(t *testing.T, memberID, intentID string, amountCents int) []byte {
	obj, err := json.Marshal(map[string]interface{}{
		"id":              intentID,
		"amount_received": amountCents,
		"currency":        "inr",
		"status":          "succeeded",
		"metadata": map[string]string{
			"member_id": memberID,
			"month":     "3",
			"year":      "2026",
		},
	})
	require.NoError(t, err)
	body, err := json.Marshal(map[string]interface{}{
		"id":   "evt_1",
		"type": "payment_intent.succeeded",
		"data": map[string]interface{}{"object": json.RawMessage(obj)},
	})
	require.NoError(t, err)
	return body
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	wh, _, m := setupWebhookTest(t)
	app := webhookApp(wh)

	body := duesIntentEvent(t, m.MemberID.String(), "pi_123", 20000)
	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(string(body)))
	req.Header.Set("Stripe-Signature", signPayload(body, "whsec_wrong"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestWebhook_RejectsEmptyBody(t *testing.T) {
	wh, _, _ := setupWebhookTest(t)
	app := webhookApp(wh)

	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestWebhook_BooksDuesPayment(t *testing.T) {
	wh, db, m := setupWebhookTest(t)
	app := webhookApp(wh)

	body := duesIntentEvent(t, m.MemberID.String(), "pi_123", 20000)
	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(string(body)))
	req.Header.Set("Stripe-Signature", signPayload(body, testSecret))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var payment domain.MonthlyPayment
	require.NoError(t, db.Where("member_id = ?", m.MemberID).First(&payment).Error)
	assert.Equal(t, 3, payment.Month)
	assert.Equal(t, 2026, payment.Year)
	assert.Equal(t, 200.0, payment.AmountPaid)
	assert.Equal(t, 200.0, payment.AmountDue) // 2 base shares at unit price
	assert.True(t, payment.IsPaid)
	require.NotNil(t, payment.StripePaymentIntentID)
	assert.Equal(t, "pi_123", *payment.StripePaymentIntentID)
}

// Stripe retries deliveries; a second event for the same intent must not book
// a second payment.
func TestWebhook_Idempotent(t *testing.T) {
	wh, db, m := setupWebhookTest(t)
	app := webhookApp(wh)

	body := duesIntentEvent(t, m.MemberID.String(), "pi_123", 20000)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(string(body)))
		req.Header.Set("Stripe-Signature", signPayload(body, testSecret))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}

	var count int64
	require.NoError(t, db.Model(&domain.MonthlyPayment{}).Where("member_id = ?", m.MemberID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// Non-dues intents (no member metadata) are acknowledged and skipped.
func TestWebhook_IgnoresForeignIntents(t *testing.T) {
	wh, db, _ := setupWebhookTest(t)
	app := webhookApp(wh)

	obj, _ := json.Marshal(map[string]interface{}{
		"id":              "pi_other",
		"amount_received": 5000,
		"metadata":        map[string]string{},
	})
	body, _ := json.Marshal(map[string]interface{}{
		"id":   "evt_2",
		"type": "payment_intent.succeeded",
		"data": map[string]interface{}{"object": json.RawMessage(obj)},
	})
	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(string(body)))
	req.Header.Set("Stripe-Signature", signPayload(body, testSecret))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&domain.MonthlyPayment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVerifyStripeSignature_StaleTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt"}`)
	ts := fmt.Sprintf("%d", time.Now().Add(-10*time.Minute).Unix())
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(ts + "." + string(payload)))
	header := fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))

	err := verifyStripeSignature(payload, header, testSecret)
	assert.Error(t, err)
}
