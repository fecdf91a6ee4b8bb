package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MonthlyPayment tracks one member's dues for one month. AmountDue is derived
// from the member's base-share quantity at recording time.
type MonthlyPayment struct {
	PaymentID       uuid.UUID  `gorm:"column:payment_id;type:uuid;primaryKey" json:"payment_id"`
	MemberID        uuid.UUID  `gorm:"column:member_id;type:uuid;not null;index" json:"member_id"`
	Month           int        `gorm:"column:month;not null" json:"month"`
	Year            int        `gorm:"column:year;not null" json:"year"`
	BaseSharesCount int        `gorm:"column:base_shares_count;not null;default:0" json:"base_shares_count"`
	AmountDue       float64    `gorm:"column:amount_due;type:decimal(18,2);not null;default:0" json:"amount_due"`
	AmountPaid      float64    `gorm:"column:amount_paid;type:decimal(18,2);not null;default:0" json:"amount_paid"`
	IsPaid          bool       `gorm:"column:is_paid;not null;default:false" json:"is_paid"`
	PaidAt          *time.Time `gorm:"column:paid_at" json:"paid_at"`
	// Set when the payment arrived through the Stripe webhook; used for idempotency.
	StripePaymentIntentID *string   `gorm:"column:stripe_payment_intent_id;type:varchar(255);index" json:"stripe_payment_intent_id"`
	CreatedAt             time.Time `gorm:"column:created_at" json:"created_at"`
}

func (MonthlyPayment) TableName() string {
	return "monthly_payments"
}

func (p *MonthlyPayment) BeforeCreate(tx *gorm.DB) error {
	if p.PaymentID == uuid.Nil {
		p.PaymentID = uuid.New()
	}
	return nil
}
