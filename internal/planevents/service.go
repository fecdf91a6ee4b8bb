package planevents

import (
	"context"
	"errors"

	"fahran-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrPlanNotFound = errors.New("Business plan not found")

// Service serves the plan lifecycle audit trail. Events are appended by the
// voting resolver and the engines inside their transactions; this module only
// reads them.
type Service struct {
	DB *gorm.DB
}

// ListForPlan returns a plan's events in order of occurrence.
func (s *Service) ListForPlan(ctx context.Context, planID uuid.UUID) ([]domain.PlanEvent, error) {
	var plan domain.BusinessPlan
	if err := s.DB.WithContext(ctx).Where("plan_id = ?", planID).First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	var events []domain.PlanEvent
	err := s.DB.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}
