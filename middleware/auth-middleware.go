package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"github.com/aprobi/aprobi/auth"
	"github.com/aprobi/aprobi/models"
)

const principalKey = "principal"

// Principal is the authenticated user attached to a request, resolved from
// either a live session or a bearer token.
type Principal struct {
	ID       uint
	Username string
	Role     string
}

// Auth gates protected routes. A request passes with a valid bearer token
// or with a session established by the Google flow; each request uses only
// one of the two.
type Auth struct {
	Store  *session.Store
	Tokens *auth.Service
	DB     *gorm.DB
}

func NewAuth(store *session.Store, tokens *auth.Service, db *gorm.DB) *Auth {
	return &Auth{Store: store, Tokens: tokens, DB: db}
}

// RequireAuth rejects unauthenticated requests with 401 and stores the
// resolved Principal in the request locals otherwise.
func (a *Auth) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p, ok := a.fromBearer(c); ok {
			c.Locals(principalKey, p)
			return c.Next()
		}
		if p, ok := a.FromSession(c); ok {
			c.Locals(principalKey, p)
			return c.Next()
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not authenticated",
		})
	}
}

func (a *Auth) fromBearer(c *fiber.Ctx) (*Principal, bool) {
	header := c.Get("Authorization")
	if len(header) <= 7 || header[:7] != "Bearer " {
		return nil, false
	}

	id, username, role, err := a.Tokens.ParseToken(header[7:])
	if err != nil {
		return nil, false
	}
	return &Principal{ID: id, Username: username, Role: role}, true
}

// FromSession resolves the session cookie to the full user record. Absence
// of a session is a normal state, not an error.
func (a *Auth) FromSession(c *fiber.Ctx) (*Principal, bool) {
	sess, err := a.Store.Get(c)
	if err != nil {
		return nil, false
	}

	userID, ok := sess.Get("user_id").(uint)
	if !ok {
		return nil, false
	}

	var user models.User
	if err := a.DB.First(&user, userID).Error; err != nil {
		// a stale session pointing at a deleted user is just "not logged in"
		return nil, false
	}

	return &Principal{ID: user.ID, Username: user.Username, Role: user.Role}, true
}

// GetPrincipal returns the principal stored by RequireAuth.
func GetPrincipal(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(principalKey).(*Principal)
	return p, ok
}
