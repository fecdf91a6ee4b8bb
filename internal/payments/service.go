package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"fahran-backend/internal/domain"
	"fahran-backend/internal/shares"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMemberNotFound = errors.New("Member not found")
	ErrInvalidMonth   = errors.New("Month must be between 1 and 12")
	ErrInvalidAmount  = errors.New("Amount must be a positive number")
)

// Service records monthly dues against members' base shares.
type Service struct {
	DB *gorm.DB
}

// RecordInput is one dues payment.
type RecordInput struct {
	MemberID uuid.UUID
	Month    int
	Year     int
	Amount   float64
	// IntentID is set when the payment arrived via Stripe; used for idempotency.
	IntentID *string
}

// Record books a dues payment: a MonthlyPayment row with the amount due
// derived from current base holdings, a payment transaction, and the base
// share row's last payment date.
func (s *Service) Record(ctx context.Context, in RecordInput) (*domain.MonthlyPayment, error) {
	if in.Month < 1 || in.Month > 12 {
		return nil, ErrInvalidMonth
	}
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var payment *domain.MonthlyPayment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member domain.Member
		if err := tx.Where("member_id = ?", in.MemberID).First(&member).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrMemberNotFound
			}
			return err
		}

		baseQty, err := shares.HoldingQuantity(tx, in.MemberID, domain.ShareTypeBase)
		if err != nil {
			return err
		}
		amountDue := float64(baseQty) * domain.UnitPrice
		paid := math.Round(in.Amount*100) / 100
		isPaid := paid >= amountDue

		payment = &domain.MonthlyPayment{
			MemberID:              in.MemberID,
			Month:                 in.Month,
			Year:                  in.Year,
			BaseSharesCount:       baseQty,
			AmountDue:             amountDue,
			AmountPaid:            paid,
			IsPaid:                isPaid,
			StripePaymentIntentID: in.IntentID,
		}
		if isPaid {
			now := time.Now().UTC()
			payment.PaidAt = &now
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		if baseQty > 0 {
			now := time.Now().UTC()
			if err := tx.Model(&domain.Share{}).
				Where("member_id = ? AND share_type = ?", in.MemberID, domain.ShareTypeBase).
				UpdateColumn("last_payment_date", now).Error; err != nil {
				return err
			}
		}

		return tx.Create(&domain.Transaction{
			MemberID:    in.MemberID,
			Type:        domain.TxPayment,
			Amount:      paid,
			Description: fmt.Sprintf("Monthly payment for %d/%d", in.Month, in.Year),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// DuesFor returns the amount currently due for a member (base quantity at
// unit price), used to size Stripe payment intents.
func (s *Service) DuesFor(ctx context.Context, memberID uuid.UUID) (float64, error) {
	var member domain.Member
	if err := s.DB.WithContext(ctx).Where("member_id = ?", memberID).First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrMemberNotFound
		}
		return 0, err
	}
	baseQty, err := shares.HoldingQuantity(s.DB.WithContext(ctx), memberID, domain.ShareTypeBase)
	if err != nil {
		return 0, err
	}
	return float64(baseQty) * domain.UnitPrice, nil
}
