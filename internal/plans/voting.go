package plans

import (
	"context"
	"encoding/json"

	"fahran-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Resolution outcomes returned by ResolveIfDue.
const (
	OutcomeNoop     = "noop"
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// ResolveIfDue tallies a plan whose voting window has closed and moves it to
// rejected or through the funding rounds into active. Calling it on a plan
// that is not due, or already resolved, is a no-op. The plan's lock is held
// and all writes share one transaction, so a second concurrent or later call
// cannot re-synthesize votes or re-run allocation.
func (s *Service) ResolveIfDue(ctx context.Context, planID uuid.UUID) (string, error) {
	s.Locks.Lock(planID.String())
	defer s.Locks.Unlock(planID.String())

	outcome := OutcomeNoop
	var plan domain.BusinessPlan

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", planID).First(&plan).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPlanNotFound
			}
			return err
		}
		if plan.Status != domain.PlanPendingVote {
			return nil
		}
		if s.now().Before(plan.VotingEnd) {
			return nil
		}

		eligible, err := eligibleMembers(tx)
		if err != nil {
			return err
		}

		var votes []domain.Vote
		if err := tx.Where("plan_id = ?", planID).Find(&votes).Error; err != nil {
			return err
		}
		voted := make(map[uuid.UUID]bool, len(votes))
		yesCount, noCount := 0, 0
		for _, v := range votes {
			voted[v.MemberID] = true
			switch v.Choice {
			case domain.VoteYes:
				yesCount++
			case domain.VoteNo:
				noCount++
			}
		}

		// Default-vote rule: every eligible member who did not vote gets the
		// configured default synthesized in their name, counted like any other
		// vote. With the "yes" default, abstention from the ballot is approval.
		synthesized := 0
		for _, m := range eligible {
			if voted[m.MemberID] {
				continue
			}
			auto := domain.Vote{
				MemberID: m.MemberID,
				PlanID:   planID,
				Choice:   s.defaultVote(),
				IsAuto:   true,
				VotedAt:  s.now(),
			}
			if err := tx.Create(&auto).Error; err != nil {
				return err
			}
			synthesized++
			switch auto.Choice {
			case domain.VoteYes:
				yesCount++
			case domain.VoteNo:
				noCount++
			}
		}

		accepted := yesCount > noCount && float64(yesCount) > float64(yesCount+noCount)/2

		if err := appendEvent(tx, planID, domain.EventVotingResolved, nil, map[string]interface{}{
			"yes_votes":         yesCount,
			"no_votes":          noCount,
			"synthesized_votes": synthesized,
			"eligible_members":  len(eligible),
			"accepted":          accepted,
		}); err != nil {
			return err
		}

		if !accepted {
			if err := transition(tx, &plan, domain.PlanRejected); err != nil {
				return err
			}
			outcome = OutcomeRejected
			return appendEvent(tx, planID, domain.EventRejected, nil, map[string]interface{}{
				"yes_votes": yesCount,
				"no_votes":  noCount,
			})
		}

		if err := transition(tx, &plan, domain.PlanFundingRound1); err != nil {
			return err
		}
		if err := appendEvent(tx, planID, domain.EventFundingRound1, nil, nil); err != nil {
			return err
		}
		if err := s.allocate(tx, &plan, eligible); err != nil {
			return err
		}
		if err := s.finalize(tx, &plan); err != nil {
			return err
		}
		outcome = OutcomeAccepted
		return nil
	})
	if err != nil {
		return OutcomeNoop, err
	}

	if outcome != OutcomeNoop {
		log.Info().Str("plan_id", planID.String()).Str("outcome", outcome).
			Float64("funded_amount", plan.FundedAmount).Msg("plan resolved")
		s.notifyProposer(ctx, &plan, outcome)
	}
	return outcome, nil
}

// eligibleMembers returns voting-eligible members in the cooperative's
// deterministic allocation order: by join time, then by id. Allocation
// outcomes depend on this order, so it must be stable across runs.
func eligibleMembers(tx *gorm.DB) ([]domain.Member, error) {
	var members []domain.Member
	err := tx.Where("member_type <> ?", domain.MemberTypeNew).
		Order("created_at ASC, member_id ASC").
		Find(&members).Error
	return members, err
}

// transition applies a status change after checking the allowed-transition
// table. A disallowed transition aborts the whole resolution transaction.
func transition(tx *gorm.DB, plan *domain.BusinessPlan, to string) error {
	if !domain.CanTransition(plan.Status, to) {
		return ErrBadTransition
	}
	plan.Status = to
	return tx.Save(plan).Error
}

func appendEvent(tx *gorm.DB, planID uuid.UUID, eventType string, actor *uuid.UUID, payload map[string]interface{}) error {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&domain.PlanEvent{
		PlanID:        planID,
		EventType:     eventType,
		ActorMemberID: actor,
		EventData:     datatypes.JSON(b),
	}).Error
}

func (s *Service) notifyProposer(ctx context.Context, plan *domain.BusinessPlan, outcome string) {
	if s.Emails == nil {
		return
	}
	var proposer domain.Member
	if err := s.DB.WithContext(ctx).Where("member_id = ?", plan.ProposerID).First(&proposer).Error; err != nil {
		return
	}
	go func(email, name, title string) {
		if err := s.Emails.SendPlanOutcome(context.Background(), email, name, title, outcome); err != nil {
			log.Warn().Err(err).Str("plan_id", plan.PlanID.String()).Msg("plan outcome email failed")
		}
	}(proposer.Email, proposer.Name, plan.Title)
}
