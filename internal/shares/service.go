package shares

import (
	"context"
	"errors"

	"fahran-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMemberNotFound   = errors.New("Member not found")
	ErrInvalidShareType = errors.New("Invalid share type")
	ErrInvalidQuantity  = errors.New("Quantity must be a positive number")
)

// Service is the share ledger: the only place share rows are created and the
// owner of their invariants (one row per member and class, quantity >= 0).
type Service struct {
	DB *gorm.DB
}

// Summary is the per-member holdings rollup returned by the view endpoints.
type Summary struct {
	MemberID         uuid.UUID      `json:"member_id"`
	BaseShares       int            `json:"base_shares"`
	AdditionalShares int            `json:"additional_shares"`
	TotalShares      int            `json:"total_shares"`
	BaseAmount       float64        `json:"base_amount"`
	AdditionalAmount float64        `json:"additional_amount"`
	TotalAmount      float64        `json:"total_amount"`
	Shares           []domain.Share `json:"shares"`
}

// Grant adds quantity shares of the given class to a member, merging into the
// existing (member, class) row when one exists. Committee operation.
func (s *Service) Grant(ctx context.Context, memberID uuid.UUID, shareType string, quantity int) (*domain.Share, error) {
	if shareType != domain.ShareTypeBase && shareType != domain.ShareTypeAdditional {
		return nil, ErrInvalidShareType
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var share domain.Share
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member domain.Member
		if err := tx.Where("member_id = ?", memberID).First(&member).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrMemberNotFound
			}
			return err
		}
		return MergeIntoHolding(tx, memberID, shareType, quantity, &share)
	})
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// MergeIntoHolding adds quantity to the (member, class) share row inside tx,
// creating the row when absent. The increment is an atomic SQL expression so
// concurrent engine runs on different plans cannot lose updates to the same
// member's row.
func MergeIntoHolding(tx *gorm.DB, memberID uuid.UUID, shareType string, quantity int, out *domain.Share) error {
	var existing domain.Share
	err := tx.Where("member_id = ? AND share_type = ?", memberID, shareType).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		created := domain.Share{
			MemberID:  memberID,
			ShareType: shareType,
			Quantity:  quantity,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		if out != nil {
			*out = created
		}
		return nil
	}
	if err != nil {
		return err
	}
	if err := tx.Model(&domain.Share{}).
		Where("share_id = ?", existing.ShareID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
		return err
	}
	if out != nil {
		existing.Quantity += quantity
		*out = existing
	}
	return nil
}

// HoldingQuantity returns the member's quantity of one share class inside tx
// (0 when no row exists).
func HoldingQuantity(tx *gorm.DB, memberID uuid.UUID, shareType string) (int, error) {
	var share domain.Share
	err := tx.Where("member_id = ? AND share_type = ?", memberID, shareType).First(&share).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return share.Quantity, nil
}

// Summarize returns the holdings rollup for one member.
func (s *Service) Summarize(ctx context.Context, memberID uuid.UUID) (*Summary, error) {
	var shares []domain.Share
	if err := s.DB.WithContext(ctx).Where("member_id = ?", memberID).Find(&shares).Error; err != nil {
		return nil, err
	}
	sum := &Summary{MemberID: memberID, Shares: shares}
	for _, sh := range shares {
		switch sh.ShareType {
		case domain.ShareTypeBase:
			sum.BaseShares += sh.Quantity
		case domain.ShareTypeAdditional:
			sum.AdditionalShares += sh.Quantity
		}
	}
	sum.TotalShares = sum.BaseShares + sum.AdditionalShares
	sum.BaseAmount = float64(sum.BaseShares) * domain.UnitPrice
	sum.AdditionalAmount = float64(sum.AdditionalShares) * domain.UnitPrice
	sum.TotalAmount = float64(sum.TotalShares) * domain.UnitPrice
	return sum, nil
}

// ListAll returns every share row with owner names (committee view).
func (s *Service) ListAll(ctx context.Context) ([]map[string]interface{}, error) {
	var shares []domain.Share
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&shares).Error; err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(shares))
	for _, sh := range shares {
		var member domain.Member
		memberName := "Unknown"
		if err := s.DB.WithContext(ctx).Where("member_id = ?", sh.MemberID).First(&member).Error; err == nil {
			memberName = member.Name
		}
		out = append(out, map[string]interface{}{
			"share_id":         sh.ShareID.String(),
			"member_id":        sh.MemberID.String(),
			"member_name":      memberName,
			"share_type":       sh.ShareType,
			"quantity":         sh.Quantity,
			"amount_per_share": sh.AmountPerShare,
			"total_amount":     float64(sh.Quantity) * sh.AmountPerShare,
		})
	}
	return out, nil
}
