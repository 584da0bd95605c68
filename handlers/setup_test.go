package handler_test

import (
	"net/http"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aprobi/aprobi/auth"
	"github.com/aprobi/aprobi/config"
	handler "github.com/aprobi/aprobi/handlers"
	"github.com/aprobi/aprobi/middleware"
	"github.com/aprobi/aprobi/models"
	"github.com/aprobi/aprobi/router"
)

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	cfg    *config.Config
	tokens *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// in-memory sqlite is per connection; keep the pool at one
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Campaign{}, &models.Piece{}))

	cfg := &config.Config{
		Port:                "3000",
		UploadDir:           t.TempDir(),
		FrontendURL:         "http://localhost:3001",
		SessionSecret:       "test-session-secret",
		JWTSecret:           "test-jwt-secret",
		AllowedEmailDomains: []string{"example.com"},
	}

	store := session.New()
	tokens := auth.NewService(cfg)
	google := auth.NewGoogle(cfg, db)
	authmw := middleware.NewAuth(store, tokens, db)
	h := handler.New(cfg, db, tokens, google, authmw)

	// same config as production so the centralized error handler is what
	// tests exercise
	app := fiber.New(fiber.Config{ErrorHandler: router.ErrorHandler})
	router.SetupRoutes(app, h, authmw)

	return &testEnv{app: app, db: db, cfg: cfg, tokens: tokens}
}

// bearerToken creates a collaborator and returns an Authorization header
// value for it.
func (e *testEnv) bearerToken(t *testing.T) string {
	t.Helper()

	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	user := models.User{Username: "tester@example.com", Password: hash, Role: models.RoleCollaborator}
	require.NoError(t, e.db.Create(&user).Error)

	tok, err := e.tokens.IssueToken(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e *testEnv) createCampaign(t *testing.T, name, client string) *models.Campaign {
	t.Helper()

	hash, err := models.NewApprovalHash()
	require.NoError(t, err)

	campaign := &models.Campaign{Name: name, Client: client, ApprovalHash: hash}
	require.NoError(t, e.db.Create(campaign).Error)
	return campaign
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
