package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/aprobi/aprobi/config"
	"github.com/aprobi/aprobi/models"
)

// ErrDomainNotAllowed means the Google account's email domain is outside the
// organizational allow-list. Callers treat it as "not authenticated", not as
// a failure to surface.
var ErrDomainNotAllowed = errors.New("email domain not allowed")

// GoogleUserInfo is the subset of Google's userinfo payload we use.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// Google runs the OAuth code flow against Google and maps the resulting
// profile onto a local User row.
type Google struct {
	cfg         *config.Config
	oauth       *oauth2.Config
	db          *gorm.DB
	client      *http.Client
	userInfoURL string
}

func NewGoogle(cfg *config.Config, db *gorm.DB) *Google {
	return &Google{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		db:          db,
		client:      http.DefaultClient,
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

// NewState returns a random state string for the OAuth round trip.
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// LoginURL builds the provider redirect for the given state.
func (g *Google) LoginURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// CompleteLogin exchanges the callback code, fetches the profile and
// finds-or-creates the matching collaborator. A disallowed email domain
// returns ErrDomainNotAllowed without touching the store.
func (g *Google) CompleteLogin(ctx context.Context, code string) (*models.User, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	info, err := g.userInfo(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(info.Email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 || !g.cfg.DomainAllowed(parts[1]) {
		return nil, ErrDomainNotAllowed
	}

	var user models.User
	err = g.db.WithContext(ctx).Where("username = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Username: email,
			Password: models.OAuthPasswordSentinel,
			Role:     models.RoleCollaborator,
		}
		if err := g.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *Google) userInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.userInfoURL+"?access_token="+accessToken, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google API error: %s", string(body))
	}

	var info GoogleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return &info, nil
}
