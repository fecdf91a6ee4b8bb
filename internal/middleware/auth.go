package middleware

import (
	"fahran-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const memberLocal = "member"

// RequireAuth ensures a member is in the session. Returns 401 with the
// standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		member := c.Locals(memberLocal)
		if member == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireTopMember restricts a route to committee ("top") members.
// Must run after RequireAuth.
func RequireTopMember() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := GetActor(c)
		if actor == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !actor.IsTopMember {
			return response.Forbidden(c, "Only top members can access this")
		}
		return c.Next()
	}
}

// GetMember returns the raw session member from Locals (nil if not logged in).
func GetMember(c *fiber.Ctx) interface{} {
	return c.Locals(memberLocal)
}

// Actor is the typed view of the session member used by handlers.
type Actor struct {
	MemberID    string
	Name        string
	Email       string
	MemberType  string
	IsTopMember bool
}

// GetActor decodes the session member map into an Actor (nil if absent/invalid).
func GetActor(c *fiber.Ctx) *Actor {
	m, ok := GetMember(c).(map[string]interface{})
	if !ok {
		return nil
	}
	id, _ := m["member_id"].(string)
	if id == "" {
		return nil
	}
	name, _ := m["name"].(string)
	email, _ := m["email"].(string)
	memberType, _ := m["member_type"].(string)
	isTop, _ := m["is_top_member"].(bool)
	return &Actor{
		MemberID:    id,
		Name:        name,
		Email:       email,
		MemberType:  memberType,
		IsTopMember: isTop,
	}
}
