package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprobi/aprobi/models"
)

func TestAuthStatusWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/auth/status", nil))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var status struct {
		IsAuthenticated bool             `json:"isAuthenticated"`
		User            *json.RawMessage `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.False(t, status.IsAuthenticated)
	if status.User != nil {
		assert.Equal(t, "null", string(*status.User))
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"username":"not-an-email","password":"pw"}`,
		`{"username":"a@example.com","password":""}`,
		`{"username":"a@example.com","password":"pw","role":"superuser"}`,
	} {
		resp := env.do(t, postJSON("/register", body, ""))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", body)
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, postJSON("/register", `{"username":"ana@example.com","password":"hunter2"}`, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotZero(t, out.ID)
	assert.Equal(t, "ana@example.com", out.Username)

	var user models.User
	require.NoError(t, env.db.First(&user, out.ID).Error)
	assert.NotEqual(t, "hunter2", user.Password, "password must be stored hashed")
	assert.Equal(t, models.RoleCollaborator, user.Role)

	// duplicate username fails validation, not with a server error
	resp = env.do(t, postJSON("/register", `{"username":"ana@example.com","password":"other"}`, ""))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginIssuesUsableToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, postJSON("/register", `{"username":"ana@example.com","password":"hunter2"}`, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, postJSON("/login", `{"username":"ana@example.com","password":"wrong"}`, ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, postJSON("/login", `{"username":"ana@example.com","password":"hunter2"}`, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)

	// the token gates the campaign routes
	req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	resp = env.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRejectsOAuthSentinelAccounts(t *testing.T) {
	env := newTestEnv(t)

	user := models.User{
		Username: "oauth-user@example.com",
		Password: models.OAuthPasswordSentinel,
		Role:     models.RoleCollaborator,
	}
	require.NoError(t, env.db.Create(&user).Error)

	resp := env.do(t, postJSON("/login", `{"username":"oauth-user@example.com","password":"oauth"}`, ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnknownUserLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, postJSON("/login", `{"username":"ghost@example.com","password":"pw"}`, ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
