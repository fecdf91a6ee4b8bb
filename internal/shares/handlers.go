package shares

import (
	"fahran-backend/internal/middleware"
	"fahran-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles share ledger handlers.
type Handlers struct {
	Service *Service
}

// MyShares GET /api/v1/shares/my-shares
func (h *Handlers) MyShares(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	memberID, err := uuid.Parse(actor.MemberID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	sum, err := h.Service.Summarize(c.Context(), memberID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Shares fetched", sum, nil)
}

// MemberShares GET /api/v1/shares/member-shares/:member_id
// Regular members can only view their own shares.
func (h *Handlers) MemberShares(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	memberID, err := uuid.Parse(c.Params("member_id"))
	if err != nil {
		return response.Error(c, "Invalid member_id", 400, nil)
	}
	if !actor.IsTopMember && actor.MemberID != memberID.String() {
		return response.Forbidden(c, "You can only view your own shares")
	}
	sum, err := h.Service.Summarize(c.Context(), memberID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Shares fetched", sum, nil)
}

// AllShares GET /api/v1/shares/all-shares (top members only)
func (h *Handlers) AllShares(c *fiber.Ctx) error {
	out, err := h.Service.ListAll(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Shares fetched", fiber.Map{"shares": out}, nil)
}

// GrantShares POST /api/v1/shares/grant-shares (top members only)
func (h *Handlers) GrantShares(c *fiber.Ctx) error {
	var body struct {
		MemberID  string `json:"member_id"`
		ShareType string `json:"share_type"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	memberID, err := uuid.Parse(body.MemberID)
	if err != nil {
		return response.Error(c, "Invalid member_id", 400, nil)
	}
	share, err := h.Service.Grant(c.Context(), memberID, body.ShareType, body.Quantity)
	if err != nil {
		statusMap := map[string]int{
			ErrMemberNotFound.Error():   404,
			ErrInvalidShareType.Error(): 400,
			ErrInvalidQuantity.Error():  400,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Shares granted", fiber.Map{
		"share_id":   share.ShareID.String(),
		"share_type": share.ShareType,
		"quantity":   share.Quantity,
	}, nil)
}
