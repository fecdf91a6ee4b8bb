package plans

import (
	"fahran-backend/internal/middleware"
	"fahran-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles plan lifecycle handlers.
type Handlers struct {
	Service *Service
}

// CreatePlan POST /api/v1/plans/create-plan (top members only)
func (h *Handlers) CreatePlan(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	proposerID, err := uuid.Parse(actor.MemberID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	plan, err := h.Service.Create(c.Context(), proposerID, in)
	if err != nil {
		statusMap := map[string]int{
			ErrTitleRequired.Error(): 400,
			ErrInvalidAmount.Error(): 400,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Business plan created", fiber.Map{
		"plan_id":    plan.PlanID.String(),
		"status":     plan.Status,
		"voting_end": plan.VotingEnd,
	}, nil)
}

// ListPlans GET /api/v1/plans/list-plans
func (h *Handlers) ListPlans(c *fiber.Ctx) error {
	views, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Plans fetched", fiber.Map{"plans": views}, nil)
}

// GetPlan GET /api/v1/plans/get-plan/:plan_id
func (h *Handlers) GetPlan(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("plan_id"))
	if err != nil {
		return response.Error(c, "Invalid plan_id", 400, nil)
	}
	plan, allocations, err := h.Service.Get(c.Context(), planID)
	if err != nil {
		if err == ErrPlanNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Plan fetched", fiber.Map{
		"plan":        plan,
		"allocations": allocations,
	}, nil)
}

// CastVote POST /api/v1/plans/cast-vote
func (h *Handlers) CastVote(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	memberID, err := uuid.Parse(actor.MemberID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var body struct {
		PlanID string `json:"plan_id"`
		Choice string `json:"choice"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.PlanID == "" || body.Choice == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	planID, err := uuid.Parse(body.PlanID)
	if err != nil {
		return response.Error(c, "Invalid plan_id", 400, nil)
	}

	if err := h.Service.CastVote(c.Context(), planID, memberID, body.Choice); err != nil {
		statusMap := map[string]int{
			ErrPlanNotFound.Error():   404,
			ErrVotingClosed.Error():   400,
			ErrInvalidChoice.Error():  400,
			ErrMemberNotFound.Error(): 404,
			ErrNotEligible.Error():    403,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Vote recorded", fiber.Map{}, nil)
}

// ResolveDue POST /api/v1/plans/resolve-due/:plan_id (top members only)
// Resolves a plan whose voting window has closed; no-op otherwise.
func (h *Handlers) ResolveDue(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("plan_id"))
	if err != nil {
		return response.Error(c, "Invalid plan_id", 400, nil)
	}
	outcome, err := h.Service.ResolveIfDue(c.Context(), planID)
	if err != nil {
		if err == ErrPlanNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Resolution checked", fiber.Map{"outcome": outcome}, nil)
}
