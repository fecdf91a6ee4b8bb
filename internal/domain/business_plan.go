package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BusinessPlan statuses. Transitions are one-directional and enforced through
// CanTransition; a plan is never deleted and "rejected" is terminal.
const (
	PlanPendingVote   = "pending_vote"
	PlanRejected      = "rejected"
	PlanFundingRound1 = "funding_round_1"
	PlanFundingRound2 = "funding_round_2"
	PlanActive        = "active"
)

// planTransitions is the allowed-transition table for BusinessPlan.Status.
var planTransitions = map[string][]string{
	PlanPendingVote:   {PlanRejected, PlanFundingRound1},
	PlanFundingRound1: {PlanFundingRound2, PlanActive},
	PlanFundingRound2: {PlanActive},
}

// CanTransition reports whether a plan status change is allowed.
func CanTransition(from, to string) bool {
	for _, next := range planTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BusinessPlan is a funding proposal. Voting runs in [VotingStart, VotingEnd);
// once resolved the plan either dies rejected or moves through the funding
// rounds into "active", where profit cycles accumulate into CurrentProfit.
type BusinessPlan struct {
	PlanID         uuid.UUID `gorm:"column:plan_id;type:uuid;primaryKey" json:"plan_id"`
	Title          string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description    string    `gorm:"column:description;type:text" json:"description"`
	ProposerID     uuid.UUID `gorm:"column:proposer_id;type:uuid;not null" json:"proposer_id"`
	RequiredAmount float64   `gorm:"column:required_amount;type:decimal(18,2);not null" json:"required_amount"`
	IsRecurring    bool      `gorm:"column:is_recurring;not null;default:false" json:"is_recurring"`
	Status         string    `gorm:"column:status;type:varchar(20);not null;default:pending_vote" json:"status"`
	VotingStart    time.Time `gorm:"column:voting_start" json:"voting_start"`
	VotingEnd      time.Time `gorm:"column:voting_end" json:"voting_end"`
	FundedAmount   float64   `gorm:"column:funded_amount;type:decimal(18,2);not null;default:0" json:"funded_amount"`
	CurrentProfit  float64   `gorm:"column:current_profit;type:decimal(18,2);not null;default:0" json:"current_profit"`
	TotalLoss      float64   `gorm:"column:total_loss;type:decimal(18,2);not null;default:0" json:"total_loss"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (BusinessPlan) TableName() string {
	return "business_plans"
}

func (p *BusinessPlan) BeforeCreate(tx *gorm.DB) error {
	if p.PlanID == uuid.Nil {
		p.PlanID = uuid.New()
	}
	return nil
}
