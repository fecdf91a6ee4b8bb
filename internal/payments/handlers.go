package payments

import (
	"math"
	"strconv"

	"fahran-backend/internal/middleware"
	"fahran-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Handlers bundles dues payment handlers.
type Handlers struct {
	Service       *Service
	StripeCreator StripePaymentIntentCreator
}

// StripePaymentIntentCreator abstracts Stripe PaymentIntent creation for
// testability.
type StripePaymentIntentCreator interface {
	Create(amountCents int64, currency string, metadata map[string]string) (*StripePaymentIntentResult, error)
}

type StripePaymentIntentResult struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// RealStripeCreator uses the Stripe Go SDK to create PaymentIntents.
type RealStripeCreator struct {
	SecretKey string
}

func (r *RealStripeCreator) Create(amountCents int64, currency string, metadata map[string]string) (*StripePaymentIntentResult, error) {
	if r.SecretKey == "" {
		return nil, fiber.NewError(501, "Stripe integration pending")
	}
	stripe.Key = r.SecretKey
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &StripePaymentIntentResult{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// RecordPayment POST /api/v1/payments/record-payment (top members only)
// Books an offline dues payment collected by the treasurer.
func (h *Handlers) RecordPayment(c *fiber.Ctx) error {
	var body struct {
		MemberID string  `json:"member_id"`
		Month    int     `json:"month"`
		Year     int     `json:"year"`
		Amount   float64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	memberID, err := uuid.Parse(body.MemberID)
	if err != nil {
		return response.Error(c, "Invalid member_id", 400, nil)
	}

	payment, err := h.Service.Record(c.Context(), RecordInput{
		MemberID: memberID,
		Month:    body.Month,
		Year:     body.Year,
		Amount:   body.Amount,
	})
	if err != nil {
		statusMap := map[string]int{
			ErrMemberNotFound.Error(): 404,
			ErrInvalidMonth.Error():   400,
			ErrInvalidAmount.Error():  400,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Payment recorded", fiber.Map{
		"payment_id": payment.PaymentID.String(),
		"amount_due": payment.AmountDue,
		"is_paid":    payment.IsPaid,
	}, nil)
}

// CreateDuesIntent POST /api/v1/payments/create-intent
// Creates a Stripe PaymentIntent for the calling member's monthly dues; the
// webhook books the payment once it succeeds.
func (h *Handlers) CreateDuesIntent(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	memberID, err := uuid.Parse(actor.MemberID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var body struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.Month < 1 || body.Month > 12 || body.Year == 0 {
		return response.Error(c, "Invalid month or year", 400, nil)
	}

	due, err := h.Service.DuesFor(c.Context(), memberID)
	if err != nil {
		if err == ErrMemberNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	if due <= 0 {
		return response.Error(c, "No dues outstanding", 400, nil)
	}

	if h.StripeCreator == nil {
		return response.Error(c, "Stripe not configured", 500, nil)
	}
	amountCents := int64(math.Round(due * 100))
	pi, err := h.StripeCreator.Create(amountCents, "inr", map[string]string{
		"member_id": actor.MemberID,
		"month":     strconv.Itoa(body.Month),
		"year":      strconv.Itoa(body.Year),
	})
	if err != nil {
		code := 500
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Success(c, "Payment intent created", fiber.Map{
		"payment_intent_id": pi.ID,
		"client_secret":     pi.ClientSecret,
		"amount_due":        due,
	}, nil)
}
