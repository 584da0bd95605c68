package handler

import (
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aprobi/aprobi/auth"
	"github.com/aprobi/aprobi/models"
)

const oauthStateCookie = "oauth_state"

// GoogleLogin starts the Google OAuth flow. The random state travels in a
// short-lived cookie and comes back on the callback.
func (h *Handler) GoogleLogin(c *fiber.Ctx) error {
	state, err := auth.NewState()
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		MaxAge:   300,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Redirect(h.Google.LoginURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback finishes the OAuth flow. Any failure, including an email
// domain outside the allow-list, ends as a plain redirect to the login page
// with no session established.
func (h *Handler) GoogleCallback(c *fiber.Ctx) error {
	loginURL := h.Cfg.FrontendURL + "/login"

	state := c.Cookies(oauthStateCookie)
	c.Cookie(&fiber.Cookie{
		Name:    oauthStateCookie,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
	})

	if state == "" || c.Query("state") != state {
		log.Printf("auth: oauth state mismatch")
		return c.Redirect(loginURL)
	}
	if errMsg := c.Query("error"); errMsg != "" {
		log.Printf("auth: provider returned error: %s", errMsg)
		return c.Redirect(loginURL)
	}

	user, err := h.Google.CompleteLogin(c.Context(), c.Query("code"))
	if err != nil {
		if errors.Is(err, auth.ErrDomainNotAllowed) {
			log.Printf("auth: sign-in from disallowed domain")
		} else {
			log.Printf("auth: google login failed: %v", err)
		}
		return c.Redirect(loginURL)
	}

	sess, err := h.Auth.Store.Get(c)
	if err != nil {
		return err
	}
	sess.Set("user_id", user.ID)
	if err := sess.Save(); err != nil {
		return err
	}

	log.Printf("auth: user logged in: %s", user.Username)
	return c.Redirect(h.Cfg.FrontendURL)
}

// AuthStatus reports whether the caller holds a live session. A missing or
// stale session is a normal state and answers 401, never an internal error.
func (h *Handler) AuthStatus(c *fiber.Ctx) error {
	p, ok := h.Auth.FromSession(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"isAuthenticated": false,
			"user":            nil,
		})
	}

	return c.JSON(fiber.Map{
		"isAuthenticated": true,
		"user": fiber.Map{
			"id":       p.ID,
			"username": p.Username,
			"role":     p.Role,
		},
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	if sess, err := h.Auth.Store.Get(c); err == nil {
		_ = sess.Destroy()
	}
	return c.Redirect(h.Cfg.FrontendURL)
}

// Register is the legacy manual signup path. Passwords are hashed before the
// row is written.
func (h *Handler) Register(c *fiber.Ctx) error {
	type registerInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	input := new(registerInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	input.Username = strings.ToLower(strings.TrimSpace(input.Username))
	if _, err := mail.ParseAddress(input.Username); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username must be an email address"})
	}
	if input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password is required"})
	}
	if input.Role == "" {
		input.Role = models.RoleCollaborator
	}
	if !models.ValidRole(input.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role"})
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return err
	}

	user := models.User{Username: input.Username, Password: hash, Role: input.Role}
	if err := h.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not create user"})
	}

	return c.JSON(fiber.Map{"id": user.ID, "username": user.Username})
}

// Login verifies credentials and answers with a stateless signed token
// carrying the user's id and role.
func (h *Handler) Login(c *fiber.Ctx) error {
	type loginInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	input := new(loginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var user models.User
	err := h.DB.Where("username = ?", strings.ToLower(strings.TrimSpace(input.Username))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return err
	}

	// OAuth-created accounts carry a sentinel, not a hash; they can never
	// pass the password check.
	if user.Password == models.OAuthPasswordSentinel || !auth.CheckPasswordHash(input.Password, user.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	tokenStr, err := h.Tokens.IssueToken(user.ID, user.Username, user.Role)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"token": tokenStr})
}
