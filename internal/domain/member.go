package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Member types. A member joins as "new_member" and stays excluded from voting
// and allocation until a committee member approves them. The transition
// new_member -> regular_member is one-way.
const (
	MemberTypeTop     = "top_member"
	MemberTypeRegular = "regular_member"
	MemberTypeNew     = "new_member"
)

type Member struct {
	MemberID     uuid.UUID  `gorm:"column:member_id;type:uuid;primaryKey" json:"member_id"`
	Name         string     `gorm:"column:name;type:varchar(120);not null" json:"name"`
	Email        string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone        *string    `gorm:"column:phone;type:varchar(32)" json:"phone"`
	Location     string     `gorm:"column:location;type:varchar(64)" json:"location"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(255)" json:"-"`
	MemberType   string     `gorm:"column:member_type;type:varchar(20);not null;default:new_member" json:"member_type"`
	IsTopMember  bool       `gorm:"column:is_top_member;not null;default:false" json:"is_top_member"`
	IntroducedBy *uuid.UUID `gorm:"column:introduced_by;type:uuid" json:"introduced_by"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.MemberID == uuid.Nil {
		m.MemberID = uuid.New()
	}
	return nil
}

// Eligible reports whether the member takes part in voting and funding rounds.
func (m *Member) Eligible() bool {
	return m.MemberType != MemberTypeNew
}
