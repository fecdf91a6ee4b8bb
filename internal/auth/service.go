package auth

import (
	"context"
	"strings"

	"fahran-backend/internal/domain"
	"fahran-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service holds the DB for auth operations.
type Service struct {
	DB *gorm.DB
}

// RegisterInput is the registration request body.
type RegisterInput struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        *string `json:"phone"`
	Location     string  `json:"location"`
	Password     string  `json:"password"`
	IntroducedBy *string `json:"introduced_by"`
}

// LoginInput is the login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new member in pending-approval state. New members cannot
// log in, vote, or hold shares until a top member approves them.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Member, error) {
	name := strings.TrimSpace(in.Name)
	if !validation.IsValidName(name) {
		return nil, ErrInvalidName
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmailFormat
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}

	var existing domain.Member
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailRegistered
	}

	member := &domain.Member{
		Name:       name,
		Email:      email,
		Phone:      in.Phone,
		Location:   in.Location,
		MemberType: domain.MemberTypeNew,
	}
	if in.IntroducedBy != nil && *in.IntroducedBy != "" {
		introducer, err := findMemberByID(s.DB.WithContext(ctx), *in.IntroducedBy)
		if err != nil {
			return nil, ErrIntroducerNotFound
		}
		member.IntroducedBy = &introducer.MemberID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}
	member.PasswordHash = string(hash)

	if err := s.DB.WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

// Login finds a member by email and verifies the password. Members still in
// pending approval are refused even with correct credentials.
func (s *Service) Login(ctx context.Context, in LoginInput) (*domain.Member, error) {
	if in.Email == "" || in.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var m domain.Member
	if err := s.DB.WithContext(ctx).Where("email = ?", strings.ToLower(in.Email)).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if m.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if m.MemberType == domain.MemberTypeNew {
		return nil, ErrPendingApproval
	}
	return &m, nil
}

func findMemberByID(db *gorm.DB, id string) (*domain.Member, error) {
	var m domain.Member
	if err := db.Where("member_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
