package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Share classes. Base shares carry recurring commitments and monthly dues;
// additional shares are created mainly by profit carry-forward conversion.
const (
	ShareTypeBase       = "base"
	ShareTypeAdditional = "additional"
)

// UnitPrice is the fixed price of one share of either class.
const UnitPrice = 100.0

// Share is one member's holding of one share class. At most one row exists
// per (member, share_type); grants and carry-forward conversions merge into it.
type Share struct {
	ShareID         uuid.UUID  `gorm:"column:share_id;type:uuid;primaryKey" json:"share_id"`
	MemberID        uuid.UUID  `gorm:"column:member_id;type:uuid;not null;index:idx_shares_member_type,unique" json:"member_id"`
	ShareType       string     `gorm:"column:share_type;type:varchar(16);not null;index:idx_shares_member_type,unique" json:"share_type"`
	Quantity        int        `gorm:"column:quantity;not null;default:0" json:"quantity"`
	AmountPerShare  float64    `gorm:"column:amount_per_share;type:decimal(18,2);not null;default:100" json:"amount_per_share"`
	LastPaymentDate *time.Time `gorm:"column:last_payment_date" json:"last_payment_date"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Share) TableName() string {
	return "shares"
}

func (s *Share) BeforeCreate(tx *gorm.DB) error {
	if s.ShareID == uuid.Nil {
		s.ShareID = uuid.New()
	}
	if s.AmountPerShare == 0 {
		s.AmountPerShare = UnitPrice
	}
	return nil
}
