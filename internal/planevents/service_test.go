package planevents

import (
	"context"
	"testing"

	"fahran-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupEventsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.BusinessPlan{}, &domain.PlanEvent{}))
	return &Service{DB: db}, db
}

func TestListForPlan(t *testing.T) {
	svc, db := setupEventsTest(t)
	plan := &domain.BusinessPlan{
		Title:          "Poultry unit",
		ProposerID:     uuid.New(),
		RequiredAmount: 500,
		Status:         domain.PlanActive,
	}
	require.NoError(t, db.Create(plan).Error)

	for _, et := range []string{domain.EventVotingResolved, domain.EventFundingRound1, domain.EventFunded} {
		require.NoError(t, db.Create(&domain.PlanEvent{
			PlanID:    plan.PlanID,
			EventType: et,
			EventData: datatypes.JSON([]byte(`{}`)),
		}).Error)
	}

	events, err := svc.ListForPlan(context.Background(), plan.PlanID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventVotingResolved, events[0].EventType)
}

func TestListForPlan_NotFound(t *testing.T) {
	svc, _ := setupEventsTest(t)
	_, err := svc.ListForPlan(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPlanNotFound)
}
