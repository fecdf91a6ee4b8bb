package plans

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"fahran-backend/internal/domain"
	"fahran-backend/internal/pkg/locker"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPlanHandlers(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Member{}, &domain.Share{}, &domain.BusinessPlan{},
		&domain.Vote{}, &domain.ShareAllocation{}, &domain.PlanEvent{},
	))
	svc := &Service{DB: db, Locks: locker.New()}
	return &Handlers{Service: svc}, db
}

func planApp(h *Handlers, memberID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("member", map[string]interface{}{
			"member_id":     memberID,
			"name":          "arif",
			"email":         "arif@example.com",
			"member_type":   domain.MemberTypeTop,
			"is_top_member": true,
		})
		return c.Next()
	})
	app.Post("/api/v1/plans/create-plan", h.CreatePlan)
	app.Get("/api/v1/plans/list-plans", h.ListPlans)
	app.Get("/api/v1/plans/get-plan/:plan_id", h.GetPlan)
	app.Post("/api/v1/plans/cast-vote", h.CastVote)
	app.Post("/api/v1/plans/resolve-due/:plan_id", h.ResolveDue)
	return app
}

func TestCreatePlan_OK(t *testing.T) {
	h, db := setupPlanHandlers(t)
	m := &domain.Member{Name: "arif", Email: "arif@example.com", MemberType: domain.MemberTypeTop, IsTopMember: true}
	require.NoError(t, db.Create(m).Error)
	app := planApp(h, m.MemberID.String())

	body, _ := json.Marshal(map[string]interface{}{
		"title":           "Poultry unit",
		"description":     "Broiler batch of 500",
		"required_amount": 1200,
	})
	req := httptest.NewRequest("POST", "/api/v1/plans/create-plan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var plan domain.BusinessPlan
	require.NoError(t, db.First(&plan).Error)
	assert.Equal(t, domain.PlanPendingVote, plan.Status)
	assert.Equal(t, m.MemberID, plan.ProposerID)
	assert.True(t, plan.VotingEnd.After(plan.VotingStart))
}

func TestCreatePlan_MissingTitle(t *testing.T) {
	h, db := setupPlanHandlers(t)
	m := &domain.Member{Name: "arif", Email: "arif@example.com", MemberType: domain.MemberTypeTop, IsTopMember: true}
	require.NoError(t, db.Create(m).Error)
	app := planApp(h, m.MemberID.String())

	body, _ := json.Marshal(map[string]interface{}{"required_amount": 500})
	req := httptest.NewRequest("POST", "/api/v1/plans/create-plan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCastVote_BadChoice(t *testing.T) {
	h, db := setupPlanHandlers(t)
	m := &domain.Member{Name: "arif", Email: "arif@example.com", MemberType: domain.MemberTypeRegular}
	require.NoError(t, db.Create(m).Error)
	plan, err := h.Service.Create(context.Background(), m.MemberID, CreateInput{Title: "x", RequiredAmount: 100})
	require.NoError(t, err)
	app := planApp(h, m.MemberID.String())

	body, _ := json.Marshal(map[string]string{"plan_id": plan.PlanID.String(), "choice": "maybe"})
	req := httptest.NewRequest("POST", "/api/v1/plans/cast-vote", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGetPlan_NotFound(t *testing.T) {
	h, _ := setupPlanHandlers(t)
	app := planApp(h, uuid.New().String())

	req := httptest.NewRequest("GET", "/api/v1/plans/get-plan/"+uuid.New().String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestResolveDue_NoopOnPendingPlan(t *testing.T) {
	h, db := setupPlanHandlers(t)
	m := &domain.Member{Name: "arif", Email: "arif@example.com", MemberType: domain.MemberTypeTop, IsTopMember: true}
	require.NoError(t, db.Create(m).Error)
	plan, err := h.Service.Create(context.Background(), m.MemberID, CreateInput{Title: "x", RequiredAmount: 100})
	require.NoError(t, err)
	app := planApp(h, m.MemberID.String())

	req := httptest.NewRequest("POST", "/api/v1/plans/resolve-due/"+plan.PlanID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var got domain.BusinessPlan
	require.NoError(t, db.First(&got, "plan_id = ?", plan.PlanID).Error)
	assert.Equal(t, domain.PlanPendingVote, got.Status)
}
