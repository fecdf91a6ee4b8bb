package planevents

import (
	"fahran-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles plan event handlers.
type Handlers struct {
	Service *Service
}

// GetPlanEvents GET /api/v1/plan-events/get-plan-events/:plan_id
func (h *Handlers) GetPlanEvents(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("plan_id"))
	if err != nil {
		return response.Error(c, "Invalid plan_id", 400, nil)
	}
	events, err := h.Service.ListForPlan(c.Context(), planID)
	if err != nil {
		if err == ErrPlanNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Plan events fetched", fiber.Map{"events": events}, nil)
}
