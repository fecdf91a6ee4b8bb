package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profit actions. "book" means the full amount was paid out as cash,
// "partial" means part of it was carried forward into additional shares.
const (
	ProfitActionBook    = "book"
	ProfitActionPartial = "partial"
)

// ProfitRecord is one profit-reporting event for a plan.
// BookedAmount + CarryForwardAmount equals TotalProfit.
type ProfitRecord struct {
	RecordID           uuid.UUID `gorm:"column:record_id;type:uuid;primaryKey" json:"record_id"`
	PlanID             uuid.UUID `gorm:"column:plan_id;type:uuid;not null;index" json:"plan_id"`
	TotalProfit        float64   `gorm:"column:total_profit;type:decimal(18,2);not null" json:"total_profit"`
	BookPercentage     float64   `gorm:"column:book_percentage;type:decimal(5,2);not null" json:"book_percentage"`
	BookedAmount       float64   `gorm:"column:booked_amount;type:decimal(18,2);not null" json:"booked_amount"`
	CarryForwardAmount float64   `gorm:"column:carry_forward_amount;type:decimal(18,2);not null" json:"carry_forward_amount"`
	Action             string    `gorm:"column:action;type:varchar(16);not null" json:"action"`
	RecordedAt         time.Time `gorm:"column:recorded_at" json:"recorded_at"`
}

func (ProfitRecord) TableName() string {
	return "profit_records"
}

func (r *ProfitRecord) BeforeCreate(tx *gorm.DB) error {
	if r.RecordID == uuid.Nil {
		r.RecordID = uuid.New()
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	return nil
}
