package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fahran-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// WebhookHandler processes Stripe payment_intent.succeeded events for dues
// paid online.
type WebhookHandler struct {
	Service       *Service
	WebhookSecret string
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type paymentIntentObject struct {
	ID             string            `json:"id"`
	AmountReceived int               `json:"amount_received"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	Metadata       map[string]string `json:"metadata"`
}

// HandleWebhook POST /api/v1/stripe/webhook — raw body, signature
// verification, then booking. Mounted before the session middleware so no
// body parser consumes the payload.
func (wh *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	rawBody := c.BodyRaw()
	sig := c.Get("Stripe-Signature")

	if len(rawBody) == 0 {
		log.Warn().Msg("stripe webhook received empty body")
		return c.Status(400).SendString("Webhook Error: empty body")
	}
	if err := verifyStripeSignature(rawBody, sig, wh.WebhookSecret); err != nil {
		log.Warn().Err(err).Bool("has_sig", sig != "").Msg("stripe webhook signature verification failed")
		return c.Status(400).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	var event stripeEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return c.Status(400).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	if event.Type == "payment_intent.succeeded" {
		var pi paymentIntentObject
		if err := json.Unmarshal(event.Data.Object, &pi); err != nil {
			return c.Status(200).SendString("ok")
		}
		if err := wh.handlePaymentIntentSucceeded(c, pi); err != nil {
			// Domain errors still return 200 so Stripe does not retry forever.
			log.Warn().Err(err).Str("intent", pi.ID).Msg("dues webhook processing failed")
			return c.Status(200).SendString("ok")
		}
	}

	return c.Status(200).SendString("ok")
}

func (wh *WebhookHandler) handlePaymentIntentSucceeded(c *fiber.Ctx, pi paymentIntentObject) error {
	memberIDStr := pi.Metadata["member_id"]
	monthStr := pi.Metadata["month"]
	yearStr := pi.Metadata["year"]
	if memberIDStr == "" || monthStr == "" || yearStr == "" {
		return nil // not a dues intent; skip silently
	}

	memberID, err := uuid.Parse(memberIDStr)
	if err != nil {
		return nil
	}
	month, _ := strconv.Atoi(monthStr)
	year, _ := strconv.Atoi(yearStr)

	// Idempotency: one booking per intent.
	var existing domain.MonthlyPayment
	err = wh.Service.DB.WithContext(c.Context()).
		Where("stripe_payment_intent_id = ?", pi.ID).
		First(&existing).Error
	if err == nil {
		return nil // already processed
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	intentID := pi.ID
	_, err = wh.Service.Record(c.Context(), RecordInput{
		MemberID: memberID,
		Month:    month,
		Year:     year,
		Amount:   float64(pi.AmountReceived) / 100,
		IntentID: &intentID,
	})
	return err
}

// verifyStripeSignature verifies the Stripe-Signature header against the
// webhook secret (t=timestamp, v1=hmac-sha256, 5-minute tolerance).
func verifyStripeSignature(payload []byte, sigHeader, secret string) error {
	if sigHeader == "" || secret == "" {
		return errors.New("missing signature or secret")
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return errors.New("invalid signature format")
	}

	signedPayload := timestamp + "." + string(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	expectedSig := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expectedSig)) {
			ts, err := strconv.ParseInt(timestamp, 10, 64)
			if err != nil {
				return errors.New("invalid timestamp")
			}
			diff := time.Now().Unix() - ts
			if diff < 0 {
				diff = -diff
			}
			if diff > 300 {
				return errors.New("timestamp too old")
			}
			return nil
		}
	}
	return errors.New("signature mismatch")
}
