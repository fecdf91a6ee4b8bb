package profit

import (
	"fahran-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles profit distribution handlers.
type Handlers struct {
	Service *Service
}

// ReportProfit POST /api/v1/profit/report-profit (top members only)
func (h *Handlers) ReportProfit(c *fiber.Ctx) error {
	var body struct {
		PlanID         string  `json:"plan_id"`
		TotalProfit    float64 `json:"total_profit"`
		BookPercentage float64 `json:"book_percentage"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.PlanID == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	planID, err := uuid.Parse(body.PlanID)
	if err != nil {
		return response.Error(c, "Invalid plan_id", 400, nil)
	}

	record, err := h.Service.Report(c.Context(), planID, Input{
		TotalProfit:    body.TotalProfit,
		BookPercentage: body.BookPercentage,
	})
	if err != nil {
		statusMap := map[string]int{
			ErrPlanNotFound.Error():      404,
			ErrPlanNotActive.Error():     400,
			ErrNoAllocations.Error():     400,
			ErrInvalidProfit.Error():     400,
			ErrInvalidPercentage.Error(): 400,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Profit recorded and distributed", fiber.Map{
		"record_id":            record.RecordID.String(),
		"total_profit":         record.TotalProfit,
		"booked_amount":        record.BookedAmount,
		"carry_forward_amount": record.CarryForwardAmount,
		"action":               record.Action,
	}, nil)
}
