package router

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"

	handler "github.com/aprobi/aprobi/handlers"
	"github.com/aprobi/aprobi/middleware"
	"github.com/aprobi/aprobi/web"
)

// SetupRoutes wires the single authoritative route set: auth (both
// strategies), campaigns, public approval, file serving and the embedded UI.
func SetupRoutes(app *fiber.App, h *handler.Handler, authmw *middleware.Auth) {
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     h.Cfg.FrontendURL,
		AllowCredentials: true,
	}))
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: CookieKey(h.Cfg.SessionSecret),
	}))

	// Google OAuth + session
	app.Get("/auth/google", h.GoogleLogin)
	app.Get("/auth/google/callback", h.GoogleCallback)
	app.Get("/auth/status", h.AuthStatus)
	app.Get("/logout", h.Logout)

	// Legacy credential auth issuing bearer tokens
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)

	// Campaigns require either a session or a bearer token
	campaigns := app.Group("/campaigns", authmw.RequireAuth())
	campaigns.Post("/", h.CreateCampaign)
	campaigns.Get("/", h.ListCampaigns)
	campaigns.Post("/:id/upload", h.UploadPieces)

	// Public approval link: the hash is the only access control
	app.Get("/approval/:hash", h.ApprovalView)
	app.Post("/approval/:hash", h.SubmitApproval)

	app.Get("/files/:filename", h.ServeFile)

	app.Use("/", filesystem.New(filesystem.Config{
		Root:  web.Dist(),
		Index: "index.html",
	}))
}

// CookieKey derives the 32-byte cookie encryption key from the session
// secret, base64 encoded the way the middleware expects.
func CookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// ErrorHandler is the single fallthrough for errors handlers did not map
// themselves. Detail stays in the server log; callers get a generic body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code == fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(code).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(code).JSON(fiber.Map{"error": fe.Message})
}
