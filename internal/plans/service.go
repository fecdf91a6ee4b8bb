package plans

import (
	"context"
	"errors"
	"time"

	"fahran-backend/internal/domain"
	"fahran-backend/internal/emails"
	"fahran-backend/internal/pkg/locker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPlanNotFound    = errors.New("Business plan not found")
	ErrVotingClosed    = errors.New("Voting period has ended")
	ErrInvalidChoice   = errors.New("Invalid vote choice")
	ErrInvalidAmount   = errors.New("Required amount must be a positive number")
	ErrTitleRequired   = errors.New("Title is required")
	ErrMemberNotFound  = errors.New("Member not found")
	ErrNotEligible     = errors.New("New members cannot vote")
	ErrBadTransition   = errors.New("Plan status transition not allowed")
)

// Service owns the plan lifecycle: creation, vote casting, vote resolution and
// the funding allocation rounds. Locks serializes resolution per plan; the
// profit engine shares the same Keyed instance so a resolution and a
// distribution never interleave on one plan.
type Service struct {
	DB     *gorm.DB
	Locks  *locker.Keyed
	Emails emails.Sender

	// Now is the time source for voting-window checks; nil means wall clock.
	Now func() time.Time
	// VotingWindow is how long a new plan accepts votes.
	VotingWindow time.Duration
	// DefaultVote is synthesized for eligible non-voters at resolution.
	DefaultVote string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) votingWindow() time.Duration {
	if s.VotingWindow > 0 {
		return s.VotingWindow
	}
	return 72 * time.Hour
}

func (s *Service) defaultVote() string {
	if domain.ValidVoteChoice(s.DefaultVote) {
		return s.DefaultVote
	}
	return domain.VoteYes
}

// CreateInput is the plan creation request.
type CreateInput struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	RequiredAmount float64 `json:"required_amount"`
	IsRecurring    bool    `json:"is_recurring"`
}

// Create opens a new plan for voting.
func (s *Service) Create(ctx context.Context, proposerID uuid.UUID, in CreateInput) (*domain.BusinessPlan, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.RequiredAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	now := s.now()
	plan := &domain.BusinessPlan{
		Title:          in.Title,
		Description:    in.Description,
		ProposerID:     proposerID,
		RequiredAmount: in.RequiredAmount,
		IsRecurring:    in.IsRecurring,
		Status:         domain.PlanPendingVote,
		VotingStart:    now,
		VotingEnd:      now.Add(s.votingWindow()),
	}
	if err := s.DB.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

// PlanView is the listing shape with vote tallies.
type PlanView struct {
	PlanID         uuid.UUID `json:"plan_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	ProposerID     uuid.UUID `json:"proposer_id"`
	ProposerName   string    `json:"proposer_name"`
	RequiredAmount float64   `json:"required_amount"`
	FundedAmount   float64   `json:"funded_amount"`
	IsRecurring    bool      `json:"is_recurring"`
	Status         string    `json:"status"`
	VotingStart    time.Time `json:"voting_start"`
	VotingEnd      time.Time `json:"voting_end"`
	YesVotes       int       `json:"yes_votes"`
	NoVotes        int       `json:"no_votes"`
	TotalVotes     int       `json:"total_votes"`
	CurrentProfit  float64   `json:"current_profit"`
	TotalLoss      float64   `json:"total_loss"`
}

// List returns all plans, newest first, with their vote tallies.
func (s *Service) List(ctx context.Context) ([]PlanView, error) {
	var plans []domain.BusinessPlan
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&plans).Error; err != nil {
		return nil, err
	}
	out := make([]PlanView, 0, len(plans))
	for _, p := range plans {
		view := PlanView{
			PlanID:         p.PlanID,
			Title:          p.Title,
			Description:    p.Description,
			ProposerID:     p.ProposerID,
			ProposerName:   "Unknown",
			RequiredAmount: p.RequiredAmount,
			FundedAmount:   p.FundedAmount,
			IsRecurring:    p.IsRecurring,
			Status:         p.Status,
			VotingStart:    p.VotingStart,
			VotingEnd:      p.VotingEnd,
			CurrentProfit:  p.CurrentProfit,
			TotalLoss:      p.TotalLoss,
		}
		var proposer domain.Member
		if err := s.DB.WithContext(ctx).Where("member_id = ?", p.ProposerID).First(&proposer).Error; err == nil {
			view.ProposerName = proposer.Name
		}
		var votes []domain.Vote
		if err := s.DB.WithContext(ctx).Where("plan_id = ?", p.PlanID).Find(&votes).Error; err != nil {
			return nil, err
		}
		for _, v := range votes {
			switch v.Choice {
			case domain.VoteYes:
				view.YesVotes++
			case domain.VoteNo:
				view.NoVotes++
			}
		}
		view.TotalVotes = len(votes)
		out = append(out, view)
	}
	return out, nil
}

// Get returns one plan with its allocations.
func (s *Service) Get(ctx context.Context, planID uuid.UUID) (*domain.BusinessPlan, []domain.ShareAllocation, error) {
	var plan domain.BusinessPlan
	if err := s.DB.WithContext(ctx).Where("plan_id = ?", planID).First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrPlanNotFound
		}
		return nil, nil, err
	}
	var allocations []domain.ShareAllocation
	if err := s.DB.WithContext(ctx).Where("plan_id = ?", planID).Order("allocated_at ASC").Find(&allocations).Error; err != nil {
		return nil, nil, err
	}
	return &plan, allocations, nil
}

// CastVote records or overwrites a member's vote on a plan that is still
// inside its voting window, then resolves the plan if the window has closed.
func (s *Service) CastVote(ctx context.Context, planID, memberID uuid.UUID, choice string) error {
	if !domain.ValidVoteChoice(choice) {
		return ErrInvalidChoice
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan domain.BusinessPlan
		if err := tx.Where("plan_id = ?", planID).First(&plan).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPlanNotFound
			}
			return err
		}
		if plan.Status != domain.PlanPendingVote {
			return ErrVotingClosed
		}
		if !s.now().Before(plan.VotingEnd) {
			return ErrVotingClosed
		}

		var member domain.Member
		if err := tx.Where("member_id = ?", memberID).First(&member).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrMemberNotFound
			}
			return err
		}
		if !member.Eligible() {
			return ErrNotEligible
		}

		var existing domain.Vote
		err := tx.Where("member_id = ? AND plan_id = ?", memberID, planID).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(&domain.Vote{
				MemberID: memberID,
				PlanID:   planID,
				Choice:   choice,
				VotedAt:  s.now(),
			}).Error
		}
		if err != nil {
			return err
		}
		existing.Choice = choice
		existing.IsAuto = false
		existing.VotedAt = s.now()
		return tx.Save(&existing).Error
	})
	if err != nil {
		// A vote attempt after the window closed still triggers resolution so
		// the plan does not sit unresolved waiting for an operator.
		if errors.Is(err, ErrVotingClosed) {
			_, _ = s.ResolveIfDue(ctx, planID)
		}
		return err
	}

	// The window may have closed between creation and this vote; resolution is
	// a no-op otherwise.
	_, err = s.ResolveIfDue(ctx, planID)
	return err
}
