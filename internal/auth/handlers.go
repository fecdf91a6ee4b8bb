package auth

import (
	"context"

	"fahran-backend/internal/middleware"
	"fahran-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const memberSessionsPrefix = "member_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service *Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

// Register POST /api/v1/auth/register — create a pending member.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var in RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	member, err := h.Service.Register(c.Context(), in)
	if err != nil {
		statusMap := map[string]int{
			ErrInvalidName.Error():        400,
			ErrInvalidEmailFormat.Error(): 400,
			ErrInvalidPassword.Error():    400,
			ErrEmailRegistered.Error():    400,
			ErrIntroducerNotFound.Error(): 400,
		}
		if code, ok := statusMap[err.Error()]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Member registered successfully", fiber.Map{
		"member_id": member.MemberID.String(),
	}, nil)
}

// Login POST /api/v1/auth/login — authenticate, create session, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var in LoginInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}
	if in.Email == "" || in.Password == "" {
		return response.Error(c, ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	member, err := h.Service.Login(c.Context(), in)
	if err != nil {
		switch err {
		case ErrEmailPasswordRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrInvalidCredentials:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		case ErrPendingApproval:
			return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionMember(c, middleware.SessionMember{
		MemberID:    member.MemberID.String(),
		Name:        member.Name,
		Email:       member.Email,
		MemberType:  member.MemberType,
		IsTopMember: member.IsTopMember,
	})

	// Track this member's sessions for later invalidation.
	ctx := context.Background()
	if err := h.Rdb.SAdd(ctx, memberSessionsPrefix+member.MemberID.String(), sessionID).Err(); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", fiber.Map{
		"member": fiber.Map{
			"member_id":     member.MemberID.String(),
			"name":          member.Name,
			"email":         member.Email,
			"location":      member.Location,
			"member_type":   member.MemberType,
			"is_top_member": member.IsTopMember,
		},
	}, nil)
}

// Me GET /api/v1/auth/me — return the current session member.
func (h *Handlers) Me(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Error(c, ErrNotAuthenticated.Error(), fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{
		"member": fiber.Map{
			"member_id":     actor.MemberID,
			"name":          actor.Name,
			"email":         actor.Email,
			"member_type":   actor.MemberType,
			"is_top_member": actor.IsTopMember,
		},
	}, nil)
}

// Logout DELETE /api/v1/auth/logout — destroy session, clear cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	sessionID := middleware.GetSessionID(c)

	if sessionID != "" {
		ctx := context.Background()
		h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID)
		if actor != nil {
			h.Rdb.SRem(ctx, memberSessionsPrefix+actor.MemberID, sessionID)
		}
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out", fiber.Map{}, nil)
}
