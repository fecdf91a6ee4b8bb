package transactions

import (
	"fahran-backend/internal/middleware"
	"fahran-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles transaction history handlers.
type Handlers struct {
	Service *Service
}

// GetTransactions GET /api/v1/transactions/get-transactions
func (h *Handlers) GetTransactions(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	memberID, err := uuid.Parse(actor.MemberID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	txs, err := h.Service.ListForMember(c.Context(), memberID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Transactions fetched", fiber.Map{"transactions": txs}, nil)
}

// MyStatement GET /api/v1/transactions/my-statement
func (h *Handlers) MyStatement(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	memberID, err := uuid.Parse(actor.MemberID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	statement, err := h.Service.StatementFor(c.Context(), memberID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Statement fetched", statement, nil)
}

// MemberStatement GET /api/v1/transactions/member-statement/:member_id
// Regular members can only view their own statement.
func (h *Handlers) MemberStatement(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	memberID, err := uuid.Parse(c.Params("member_id"))
	if err != nil {
		return response.Error(c, "Invalid member_id", 400, nil)
	}
	if !actor.IsTopMember && actor.MemberID != memberID.String() {
		return response.Forbidden(c, "You can only view your own statement")
	}
	statement, err := h.Service.StatementFor(c.Context(), memberID)
	if err != nil {
		if err == ErrMemberNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Statement fetched", statement, nil)
}
