package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Plan event types appended by the engines inside their transactions.
const (
	EventVotingResolved    = "VOTING_RESOLVED"
	EventRejected          = "REJECTED"
	EventFundingRound1     = "FUNDING_ROUND_1"
	EventFundingRound2     = "FUNDING_ROUND_2"
	EventFunded            = "FUNDED"
	EventProfitDistributed = "PROFIT_DISTRIBUTED"
)

// PlanEvent is the audit trail of a plan's lifecycle. EventData holds the
// event-specific payload (tallies, allocation totals, distribution figures).
type PlanEvent struct {
	EventID       uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	PlanID        uuid.UUID      `gorm:"column:plan_id;type:uuid;not null;index" json:"plan_id"`
	EventType     string         `gorm:"column:event_type;type:varchar(32);not null" json:"event_type"`
	ActorMemberID *uuid.UUID     `gorm:"column:actor_member_id;type:uuid" json:"actor_member_id"`
	EventData     datatypes.JSON `gorm:"column:event_data" json:"event_data"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (PlanEvent) TableName() string {
	return "plan_events"
}

func (e *PlanEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
