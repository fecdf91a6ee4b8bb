package members

import (
	"context"
	"errors"

	"fahran-backend/internal/domain"
	"fahran-backend/internal/emails"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrMemberNotFound  = errors.New("Member not found")
	ErrAlreadyApproved = errors.New("Member is already approved")
)

// Service holds member directory operations.
type Service struct {
	DB     *gorm.DB
	Emails emails.Sender
}

// ListMembers returns every member, newest last (committee view).
func (s *Service) ListMembers(ctx context.Context) ([]domain.Member, error) {
	var members []domain.Member
	if err := s.DB.WithContext(ctx).Order("created_at ASC, member_id ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// GetMember returns one member by id.
func (s *Service) GetMember(ctx context.Context, memberID uuid.UUID) (*domain.Member, error) {
	var m domain.Member
	if err := s.DB.WithContext(ctx).Where("member_id = ?", memberID).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Approve promotes a pending member to regular member. The transition is
// one-way: approving an already-eligible member is rejected, and a member is
// never demoted back to pending.
func (s *Service) Approve(ctx context.Context, memberID uuid.UUID) (*domain.Member, error) {
	var m domain.Member
	if err := s.DB.WithContext(ctx).Where("member_id = ?", memberID).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if m.MemberType != domain.MemberTypeNew {
		return nil, ErrAlreadyApproved
	}
	m.MemberType = domain.MemberTypeRegular
	if err := s.DB.WithContext(ctx).Save(&m).Error; err != nil {
		return nil, err
	}

	if s.Emails != nil {
		go func(email, name string) {
			if err := s.Emails.SendApproval(context.Background(), email, name); err != nil {
				log.Warn().Err(err).Str("email", email).Msg("approval email failed")
			}
		}(m.Email, m.Name)
	}
	return &m, nil
}
