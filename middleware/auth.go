// middleware/auth.go
package middleware

import (
	"context"
	"log"
	"strings"

	"trophy-progression-system/models"
	"trophy-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

const LocalIdentity = "identity"

// ProfileToucher records that a verified identity was seen.
type ProfileToucher interface {
	Touch(ctx context.Context, id *models.Identity) error
}

// UserContextMiddleware resolves the caller's identity and stores it in Locals.
// Gateway-trusted requests carry it in X-User-* headers; everyone else presents a
// bearer token. Requests without credentials continue anonymously.
func UserContextMiddleware(provider services.IdentityProvider, profiles ProfileToucher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var identity *models.Identity

		if userID := strings.TrimSpace(c.Get("X-User-ID")); userID != "" && gatewayTrusted(c) {
			identity = &models.Identity{
				UserID:   userID,
				Username: strings.TrimSpace(c.Get("X-User-Name")),
				Roles:    models.NewRoleSet(strings.Split(c.Get("X-User-Roles"), ",")...),
			}
			if len(identity.Roles) == 0 {
				identity.Roles = models.NewRoleSet(string(models.RoleUser))
			}
		} else if token, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			if provider == nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
			}
			id, err := provider.Verify(c.UserContext(), token)
			if err != nil {
				kind := services.KindOf(err)
				if kind == services.KindInternal {
					log.Printf("❌ [USER_CTX] identity provider failed: %v", err)
				}
				return c.Status(kind.HTTPStatus()).JSON(fiber.Map{"error": services.PublicMessage(err)})
			}
			identity = id
		}

		if identity == nil {
			return c.Next()
		}

		if profiles != nil && identity.Username != "" {
			if err := profiles.Touch(c.UserContext(), identity); err != nil {
				log.Printf("⚠️ [USER_CTX] failed to touch profile %s: %v", identity.UserID, err)
			}
		}
		c.Locals(LocalIdentity, identity)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// CurrentIdentity returns the identity resolved for this request, or nil.
func CurrentIdentity(c *fiber.Ctx) *models.Identity {
	id, _ := c.Locals(LocalIdentity).(*models.Identity)
	return id
}

// RequireUser rejects anonymous requests.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentIdentity(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		return c.Next()
	}
}

// RequireRoles rejects callers holding none of roles.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := CurrentIdentity(c)
		if id == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		if !id.Roles.HasAny(roles...) {
			log.Printf("🚫 [AUTHZ] %s lacks %v for %s %s", id.UserID, roles, c.Method(), c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden: insufficient permissions"})
		}
		return c.Next()
	}
}
