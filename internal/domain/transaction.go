package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction kinds.
const (
	TxProfit     = "profit"
	TxBonus      = "bonus"
	TxPayment    = "payment"
	TxWithdrawal = "withdrawal"
)

// Transaction is a ledger-visible cash movement for one member, optionally
// tied to a plan. The engines only create entries with a positive amount.
type Transaction struct {
	TxID        uuid.UUID  `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	MemberID    uuid.UUID  `gorm:"column:member_id;type:uuid;not null;index" json:"member_id"`
	Type        string     `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Amount      float64    `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	PlanID      *uuid.UUID `gorm:"column:plan_id;type:uuid" json:"plan_id"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		t.TxID = uuid.New()
	}
	return nil
}
