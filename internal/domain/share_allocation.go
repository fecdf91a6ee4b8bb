package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Allocation class tags. "mixed" marks non-recurring round allocations that may
// draw on base and additional holdings combined.
const (
	AllocationBase  = "base"
	AllocationMixed = "mixed"
)

// ShareAllocation earmarks shares a member has committed to one plan.
// Amount is always Quantity * UnitPrice. The allocation engine clamps Quantity
// to the member's holdings at allocation time; shares are not created here.
type ShareAllocation struct {
	AllocationID uuid.UUID `gorm:"column:allocation_id;type:uuid;primaryKey" json:"allocation_id"`
	PlanID       uuid.UUID `gorm:"column:plan_id;type:uuid;not null;index" json:"plan_id"`
	MemberID     uuid.UUID `gorm:"column:member_id;type:uuid;not null;index" json:"member_id"`
	ShareType    string    `gorm:"column:share_type;type:varchar(16);not null" json:"share_type"`
	Quantity     int       `gorm:"column:quantity;not null" json:"quantity"`
	Amount       float64   `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	AllocatedAt  time.Time `gorm:"column:allocated_at" json:"allocated_at"`
}

func (ShareAllocation) TableName() string {
	return "share_allocations"
}

func (a *ShareAllocation) BeforeCreate(tx *gorm.DB) error {
	if a.AllocationID == uuid.Nil {
		a.AllocationID = uuid.New()
	}
	if a.AllocatedAt.IsZero() {
		a.AllocatedAt = time.Now().UTC()
	}
	return nil
}
