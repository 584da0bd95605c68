package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aprobi/aprobi/config"
	"github.com/aprobi/aprobi/models"
)

// fakeProvider stands in for Google's token and userinfo endpoints.
func fakeProvider(t *testing.T, email string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fake-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GoogleUserInfo{
			ID:            "google-id",
			Email:         email,
			VerifiedEmail: true,
			Name:          "Test User",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testGoogle(t *testing.T, email string) (*Google, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	cfg := &config.Config{
		GoogleClientID:      "client-id",
		GoogleClientSecret:  "client-secret",
		OAuthRedirectURL:    "http://localhost:3000/auth/google/callback",
		AllowedEmailDomains: []string{"sunocreators.com"},
	}

	srv := fakeProvider(t, email)
	g := NewGoogle(cfg, db)
	g.oauth.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/auth",
		TokenURL: srv.URL + "/token",
	}
	g.userInfoURL = srv.URL + "/userinfo"
	return g, db
}

func TestCompleteLoginCreatesCollaborator(t *testing.T) {
	g, db := testGoogle(t, "Ana@SunoCreators.com")

	user, err := g.CompleteLogin(context.Background(), "fake-code")
	require.NoError(t, err)
	assert.Equal(t, "ana@sunocreators.com", user.Username)
	assert.Equal(t, models.RoleCollaborator, user.Role)
	assert.Equal(t, models.OAuthPasswordSentinel, user.Password)

	// second login finds the same row instead of creating another
	again, err := g.CompleteLogin(context.Background(), "fake-code")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCompleteLoginRejectsForeignDomain(t *testing.T) {
	g, db := testGoogle(t, "eve@gmail.com")

	_, err := g.CompleteLogin(context.Background(), "fake-code")
	assert.ErrorIs(t, err, ErrDomainNotAllowed)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count, "disallowed domains never create users")
}

func TestLoginURLCarriesState(t *testing.T) {
	g, _ := testGoogle(t, "ana@sunocreators.com")

	url := g.LoginURL("the-state")
	assert.Contains(t, url, "state=the-state")
	assert.Contains(t, url, "client_id=client-id")
}
