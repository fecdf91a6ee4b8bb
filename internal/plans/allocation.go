package plans

import (
	"fahran-backend/internal/domain"
	"fahran-backend/internal/shares"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// allocate converts yes-voter share holdings into allocation records for an
// accepted plan. It earmarks shares the members already hold; it never mints
// shares and never lets an allocation exceed a member's holdings.
func (s *Service) allocate(tx *gorm.DB, plan *domain.BusinessPlan, eligible []domain.Member) error {
	sharesNeeded := int(plan.RequiredAmount / domain.UnitPrice)
	if sharesNeeded <= 0 {
		return nil
	}

	yesSet, err := yesVoterSet(tx, plan.PlanID)
	if err != nil {
		return err
	}
	// Keep the eligible-member order so both scenarios iterate identically.
	var yesVoters []domain.Member
	for _, m := range eligible {
		if yesSet[m.MemberID] {
			yesVoters = append(yesVoters, m)
		}
	}
	if len(yesVoters) == 0 {
		return nil
	}

	if len(yesVoters) == len(eligible) {
		return s.allocateUnanimous(tx, plan, yesVoters, sharesNeeded)
	}
	return s.allocateGreedy(tx, plan, yesVoters, eligible, sharesNeeded)
}

// allocateUnanimous is the equal-split fast path used when every eligible
// member voted yes: a per-capita target from base shares only.
func (s *Service) allocateUnanimous(tx *gorm.DB, plan *domain.BusinessPlan, yesVoters []domain.Member, sharesNeeded int) error {
	target := sharesNeeded / len(yesVoters)
	for _, m := range yesVoters {
		base, err := shares.HoldingQuantity(tx, m.MemberID, domain.ShareTypeBase)
		if err != nil {
			return err
		}
		qty := target
		if base < qty {
			qty = base
		}
		if qty <= 0 {
			continue
		}
		if err := createAllocation(tx, plan.PlanID, m.MemberID, domain.AllocationBase, qty); err != nil {
			return err
		}
	}
	log.Info().Str("plan_id", plan.PlanID.String()).Int("per_capita_target", target).
		Int("yes_voters", len(yesVoters)).Msg("unanimous allocation complete")
	return nil
}

// allocateGreedy is the two-round path for partial approval. Round 1 draws
// from yes-voters in stable order; round 2 opens the remaining need to every
// eligible member. Capacity is base shares for recurring plans and
// base+additional otherwise, always reduced by what this plan already took.
func (s *Service) allocateGreedy(tx *gorm.DB, plan *domain.BusinessPlan, yesVoters, eligible []domain.Member, sharesNeeded int) error {
	classTag := domain.AllocationMixed
	if plan.IsRecurring {
		classTag = domain.AllocationBase
	}

	remaining := sharesNeeded
	taken := make(map[uuid.UUID]int)

	for _, m := range yesVoters {
		if remaining == 0 {
			break
		}
		capacity, err := s.memberCapacity(tx, m.MemberID, plan.IsRecurring)
		if err != nil {
			return err
		}
		qty := min(capacity, remaining)
		if qty <= 0 {
			continue
		}
		if err := createAllocation(tx, plan.PlanID, m.MemberID, classTag, qty); err != nil {
			return err
		}
		taken[m.MemberID] = qty
		remaining -= qty
	}

	// Round 1 always advances the plan, funded or not.
	if err := transition(tx, plan, domain.PlanFundingRound2); err != nil {
		return err
	}
	if err := appendEvent(tx, plan.PlanID, domain.EventFundingRound2, nil, map[string]interface{}{
		"remaining_shares": remaining,
	}); err != nil {
		return err
	}

	if remaining > 0 {
		for _, m := range eligible {
			if remaining == 0 {
				break
			}
			capacity, err := s.memberCapacity(tx, m.MemberID, plan.IsRecurring)
			if err != nil {
				return err
			}
			capacity -= taken[m.MemberID]
			qty := min(capacity, remaining)
			if qty <= 0 {
				continue
			}
			if err := createAllocation(tx, plan.PlanID, m.MemberID, classTag, qty); err != nil {
				return err
			}
			taken[m.MemberID] += qty
			remaining -= qty
		}
	}

	log.Info().Str("plan_id", plan.PlanID.String()).Int("shares_needed", sharesNeeded).
		Int("unfilled", remaining).Msg("greedy allocation complete")
	return nil
}

// memberCapacity is how many shares a member can commit to a plan: base only
// for recurring plans, base plus additional otherwise.
func (s *Service) memberCapacity(tx *gorm.DB, memberID uuid.UUID, recurring bool) (int, error) {
	base, err := shares.HoldingQuantity(tx, memberID, domain.ShareTypeBase)
	if err != nil {
		return 0, err
	}
	if recurring {
		return base, nil
	}
	additional, err := shares.HoldingQuantity(tx, memberID, domain.ShareTypeAdditional)
	if err != nil {
		return 0, err
	}
	return base + additional, nil
}

func createAllocation(tx *gorm.DB, planID, memberID uuid.UUID, classTag string, qty int) error {
	return tx.Create(&domain.ShareAllocation{
		PlanID:    planID,
		MemberID:  memberID,
		ShareType: classTag,
		Quantity:  qty,
		Amount:    float64(qty) * domain.UnitPrice,
	}).Error
}

// finalize sums the plan's allocations into funded_amount and activates the
// plan. Partially funded plans go active too; the FUNDED event records
// whether the requirement was fully met.
func (s *Service) finalize(tx *gorm.DB, plan *domain.BusinessPlan) error {
	var allocations []domain.ShareAllocation
	if err := tx.Where("plan_id = ?", plan.PlanID).Find(&allocations).Error; err != nil {
		return err
	}
	total := 0.0
	for _, a := range allocations {
		total += a.Amount
	}
	plan.FundedAmount = total
	if err := transition(tx, plan, domain.PlanActive); err != nil {
		return err
	}
	return appendEvent(tx, plan.PlanID, domain.EventFunded, nil, map[string]interface{}{
		"funded_amount": total,
		"fully_funded":  total >= plan.RequiredAmount,
	})
}

func yesVoterSet(tx *gorm.DB, planID uuid.UUID) (map[uuid.UUID]bool, error) {
	var votes []domain.Vote
	if err := tx.Where("plan_id = ? AND choice = ?", planID, domain.VoteYes).Find(&votes).Error; err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(votes))
	for _, v := range votes {
		set[v.MemberID] = true
	}
	return set, nil
}
