package profit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"fahran-backend/internal/domain"
	"fahran-backend/internal/pkg/locker"
	"fahran-backend/internal/shares"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPlanNotFound      = errors.New("Business plan not found")
	ErrPlanNotActive     = errors.New("Plan is not active")
	ErrNoAllocations     = errors.New("No allocations to distribute against")
	ErrInvalidProfit     = errors.New("Total profit must be a positive number")
	ErrInvalidPercentage = errors.New("Book percentage must be between 0 and 100")
)

// proposerBonusRate is the share of gross profit paid to the proposer on every
// distribution, independent of the book/carry split.
const proposerBonusRate = 0.10

// Service is the profit distribution engine. Locks must be the same Keyed
// instance the plans service uses so distributions and resolutions on one
// plan never overlap.
type Service struct {
	DB    *gorm.DB
	Locks *locker.Keyed
}

// Input is the profit report request.
type Input struct {
	TotalProfit    float64 `json:"total_profit"`
	BookPercentage float64 `json:"book_percentage"`
}

// Report splits a reported profit across a plan's allocation holders:
// the booked portion is paid as cash transactions, the carry-forward portion
// converts to whole additional shares with any remainder paid as cash, and
// the proposer receives a bonus of 10% of the gross profit. Everything runs
// in one transaction under the plan's lock.
func (s *Service) Report(ctx context.Context, planID uuid.UUID, in Input) (*domain.ProfitRecord, error) {
	if in.TotalProfit <= 0 {
		return nil, ErrInvalidProfit
	}
	if in.BookPercentage < 0 || in.BookPercentage > 100 {
		return nil, ErrInvalidPercentage
	}

	s.Locks.Lock(planID.String())
	defer s.Locks.Unlock(planID.String())

	var record *domain.ProfitRecord
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan domain.BusinessPlan
		if err := tx.Where("plan_id = ?", planID).First(&plan).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPlanNotFound
			}
			return err
		}
		if plan.Status != domain.PlanActive {
			return ErrPlanNotActive
		}

		var allocations []domain.ShareAllocation
		if err := tx.Where("plan_id = ?", planID).Order("allocated_at ASC").Find(&allocations).Error; err != nil {
			return err
		}
		totalShares := 0
		for _, a := range allocations {
			totalShares += a.Quantity
		}
		if totalShares == 0 {
			return ErrNoAllocations
		}

		bookedAmount := round2(in.TotalProfit * in.BookPercentage / 100)
		carryForward := round2(in.TotalProfit - bookedAmount)
		action := domain.ProfitActionPartial
		if in.BookPercentage == 100 {
			action = domain.ProfitActionBook
		}
		record = &domain.ProfitRecord{
			PlanID:             planID,
			TotalProfit:        in.TotalProfit,
			BookPercentage:     in.BookPercentage,
			BookedAmount:       bookedAmount,
			CarryForwardAmount: carryForward,
			Action:             action,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		for _, a := range allocations {
			memberShare := float64(a.Quantity) / float64(totalShares) * in.TotalProfit
			memberBooked := memberShare * in.BookPercentage / 100
			memberCarry := memberShare - memberBooked

			if memberBooked > 0 {
				if err := createCashTx(tx, a.MemberID, domain.TxProfit, round2(memberBooked),
					fmt.Sprintf("Profit from %s", plan.Title), planID); err != nil {
					return err
				}
			}
			if memberCarry > 0 {
				qty := int(memberCarry / domain.UnitPrice)
				remainder := round2(math.Mod(memberCarry, domain.UnitPrice))
				if qty > 0 {
					if err := shares.MergeIntoHolding(tx, a.MemberID, domain.ShareTypeAdditional, qty, nil); err != nil {
						return err
					}
				}
				if remainder > 0 {
					if err := createCashTx(tx, a.MemberID, domain.TxProfit, remainder,
						fmt.Sprintf("Profit remainder from %s", plan.Title), planID); err != nil {
						return err
					}
				}
			}
		}

		// Proposer bonus is off the gross figure, whatever the book split.
		bonus := round2(in.TotalProfit * proposerBonusRate)
		if err := createCashTx(tx, plan.ProposerID, domain.TxBonus, bonus,
			fmt.Sprintf("Proposer bonus from %s", plan.Title), planID); err != nil {
			return err
		}

		plan.CurrentProfit = round2(plan.CurrentProfit + in.TotalProfit)
		if err := tx.Save(&plan).Error; err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]interface{}{
			"total_profit":    in.TotalProfit,
			"book_percentage": in.BookPercentage,
			"booked_amount":   bookedAmount,
			"carry_forward":   carryForward,
			"proposer_bonus":  bonus,
			"allocations":     len(allocations),
		})
		if err != nil {
			return err
		}
		return tx.Create(&domain.PlanEvent{
			PlanID:    planID,
			EventType: domain.EventProfitDistributed,
			EventData: datatypes.JSON(payload),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("plan_id", planID.String()).
		Float64("total_profit", in.TotalProfit).
		Float64("book_percentage", in.BookPercentage).
		Msg("profit distributed")
	return record, nil
}

func createCashTx(tx *gorm.DB, memberID uuid.UUID, kind string, amount float64, description string, planID uuid.UUID) error {
	return tx.Create(&domain.Transaction{
		MemberID:    memberID,
		Type:        kind,
		Amount:      amount,
		Description: description,
		PlanID:      &planID,
	}).Error
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
