package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote choices.
const (
	VoteYes     = "yes"
	VoteNo      = "no"
	VoteAbstain = "abstain"
)

// ValidVoteChoice reports whether a submitted choice is one of the three
// accepted values.
func ValidVoteChoice(choice string) bool {
	return choice == VoteYes || choice == VoteNo || choice == VoteAbstain
}

// Vote is one member's decision on one plan. One row per (member, plan);
// re-voting before the window closes overwrites choice and timestamp.
// IsAuto marks votes synthesized by the resolver's default-vote rule.
type Vote struct {
	VoteID   uuid.UUID `gorm:"column:vote_id;type:uuid;primaryKey" json:"vote_id"`
	MemberID uuid.UUID `gorm:"column:member_id;type:uuid;not null;index:idx_votes_member_plan,unique" json:"member_id"`
	PlanID   uuid.UUID `gorm:"column:plan_id;type:uuid;not null;index:idx_votes_member_plan,unique" json:"plan_id"`
	Choice   string    `gorm:"column:choice;type:varchar(10);not null" json:"choice"`
	IsAuto   bool      `gorm:"column:is_auto;not null;default:false" json:"is_auto"`
	VotedAt  time.Time `gorm:"column:voted_at" json:"voted_at"`
}

func (Vote) TableName() string {
	return "votes"
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.VoteID == uuid.Nil {
		v.VoteID = uuid.New()
	}
	if v.VotedAt.IsZero() {
		v.VotedAt = time.Now().UTC()
	}
	return nil
}
