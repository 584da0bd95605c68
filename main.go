package main

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	authsvc "github.com/aprobi/aprobi/auth"
	"github.com/aprobi/aprobi/config"
	"github.com/aprobi/aprobi/database"
	handler "github.com/aprobi/aprobi/handlers"
	"github.com/aprobi/aprobi/middleware"
	"github.com/aprobi/aprobi/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("error closing the database connection: %v", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("failed to create upload dir: %v", err)
	}

	store := session.New(session.Config{
		Expiration:     7 * 24 * time.Hour,
		KeyLookup:      "cookie:aprobi_session",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	tokens := authsvc.NewService(cfg)
	google := authsvc.NewGoogle(cfg, db)
	authmw := middleware.NewAuth(store, tokens, db)
	h := handler.New(cfg, db, tokens, google, authmw)

	app := fiber.New(fiber.Config{
		BodyLimit:    100 * 1024 * 1024, // creative pieces include video
		ErrorHandler: router.ErrorHandler,
	})
	router.SetupRoutes(app, h, authmw)

	log.Printf("server is listening at port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
