package members

import (
	"fahran-backend/internal/middleware"
	"fahran-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles member directory handlers.
type Handlers struct {
	Service *Service
}

// ListMembers GET /api/v1/members/list-members (top members only)
func (h *Handlers) ListMembers(c *fiber.Ctx) error {
	members, err := h.Service.ListMembers(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	out := make([]fiber.Map, 0, len(members))
	for _, m := range members {
		out = append(out, fiber.Map{
			"member_id":     m.MemberID.String(),
			"name":          m.Name,
			"email":         m.Email,
			"location":      m.Location,
			"member_type":   m.MemberType,
			"is_top_member": m.IsTopMember,
		})
	}
	return response.Success(c, "Members fetched", fiber.Map{"members": out}, nil)
}

// MyProfile GET /api/v1/members/my-profile
func (h *Handlers) MyProfile(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	memberID, err := uuid.Parse(actor.MemberID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	m, err := h.Service.GetMember(c.Context(), memberID)
	if err != nil {
		if err == ErrMemberNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Profile fetched", fiber.Map{
		"member_id":     m.MemberID.String(),
		"name":          m.Name,
		"email":         m.Email,
		"location":      m.Location,
		"member_type":   m.MemberType,
		"is_top_member": m.IsTopMember,
	}, nil)
}

// ApproveMember POST /api/v1/members/approve-member/:member_id (top members only)
func (h *Handlers) ApproveMember(c *fiber.Ctx) error {
	memberID, err := uuid.Parse(c.Params("member_id"))
	if err != nil {
		return response.Error(c, "Invalid member_id", 400, nil)
	}
	m, err := h.Service.Approve(c.Context(), memberID)
	if err != nil {
		statusMap := map[string]int{
			ErrMemberNotFound.Error():  404,
			ErrAlreadyApproved.Error(): 400,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Member approved", fiber.Map{
		"member_id":   m.MemberID.String(),
		"member_type": m.MemberType,
	}, nil)
}
