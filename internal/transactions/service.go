package transactions

import (
	"context"
	"errors"

	"fahran-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMemberNotFound = errors.New("Member not found")

// Service serves transaction history and member statements.
type Service struct {
	DB *gorm.DB
}

// ListForMember returns a member's transactions, newest first.
func (s *Service) ListForMember(ctx context.Context, memberID uuid.UUID) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := s.DB.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

// Statement is the full financial statement for one member.
type Statement struct {
	Member       map[string]interface{}   `json:"member"`
	Shares       map[string]int           `json:"shares"`
	Allocations  []map[string]interface{} `json:"allocations"`
	Transactions []map[string]interface{} `json:"transactions"`
}

// StatementFor assembles shares, allocations, and transaction history for a
// member.
func (s *Service) StatementFor(ctx context.Context, memberID uuid.UUID) (*Statement, error) {
	var member domain.Member
	if err := s.DB.WithContext(ctx).Where("member_id = ?", memberID).First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	var shares []domain.Share
	if err := s.DB.WithContext(ctx).Where("member_id = ?", memberID).Find(&shares).Error; err != nil {
		return nil, err
	}
	base, additional := 0, 0
	for _, sh := range shares {
		switch sh.ShareType {
		case domain.ShareTypeBase:
			base += sh.Quantity
		case domain.ShareTypeAdditional:
			additional += sh.Quantity
		}
	}

	var allocations []domain.ShareAllocation
	if err := s.DB.WithContext(ctx).Where("member_id = ?", memberID).Order("allocated_at ASC").Find(&allocations).Error; err != nil {
		return nil, err
	}
	allocOut := make([]map[string]interface{}, 0, len(allocations))
	for _, a := range allocations {
		allocOut = append(allocOut, map[string]interface{}{
			"plan_id":    a.PlanID.String(),
			"quantity":   a.Quantity,
			"amount":     a.Amount,
			"share_type": a.ShareType,
		})
	}

	txs, err := s.ListForMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	txOut := make([]map[string]interface{}, 0, len(txs))
	for _, t := range txs {
		row := map[string]interface{}{
			"tx_id":       t.TxID.String(),
			"type":        t.Type,
			"amount":      t.Amount,
			"description": t.Description,
			"date":        t.CreatedAt,
		}
		if t.PlanID != nil {
			row["plan_id"] = t.PlanID.String()
		}
		txOut = append(txOut, row)
	}

	return &Statement{
		Member: map[string]interface{}{
			"member_id": member.MemberID.String(),
			"name":      member.Name,
			"email":     member.Email,
		},
		Shares: map[string]int{
			"base":       base,
			"additional": additional,
			"total":      base + additional,
		},
		Allocations:  allocOut,
		Transactions: txOut,
	}, nil
}
