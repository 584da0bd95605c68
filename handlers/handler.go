package handler

import (
	"gorm.io/gorm"

	"github.com/aprobi/aprobi/auth"
	"github.com/aprobi/aprobi/config"
	"github.com/aprobi/aprobi/middleware"
)

// Handler bundles the dependencies the route handlers need. Everything is
// constructed in main and passed in; there are no package-level singletons.
type Handler struct {
	Cfg    *config.Config
	DB     *gorm.DB
	Tokens *auth.Service
	Google *auth.Google
	Auth   *middleware.Auth
}

func New(cfg *config.Config, db *gorm.DB, tokens *auth.Service, google *auth.Google, authmw *middleware.Auth) *Handler {
	return &Handler{Cfg: cfg, DB: db, Tokens: tokens, Google: google, Auth: authmw}
}
