package auth

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-pkgz/auth/v2"
	"github.com/go-pkgz/auth/v2/avatar"
	"github.com/go-pkgz/auth/v2/token"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/aprobi/aprobi/config"
)

const tokenIssuer = "aprobi"

// Service issues and parses the stateless bearer tokens used by the legacy
// username/password login path. Session-based Google auth lives in google.go;
// the two strategies never gate the same request together.
type Service struct {
	svc *auth.Service
}

func NewService(cfg *config.Config) *Service {
	options := auth.Opts{
		SecretReader: token.SecretFunc(func(id string) (string, error) {
			return cfg.JWTSecret, nil
		}),
		TokenDuration:  time.Hour * 24,
		CookieDuration: time.Hour * 24 * 7,
		Issuer:         tokenIssuer,
		URL:            "http://localhost:" + cfg.Port,
		AvatarStore:    avatar.NewLocalFS(filepath.Join(os.TempDir(), "aprobi-avatars")),
	}

	return &Service{svc: auth.NewService(options)}
}

// IssueToken creates a signed token carrying the user id and role.
func (s *Service) IssueToken(userID uint, username, role string) (string, error) {
	claims := token.Claims{
		User: &token.User{
			ID:    strconv.FormatUint(uint64(userID), 10),
			Name:  username,
			Email: username,
			Attributes: map[string]interface{}{
				"role": role,
			},
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  []string{tokenIssuer},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	return s.svc.TokenService().Token(claims)
}

// ParseToken validates a bearer token and returns the principal it carries.
func (s *Service) ParseToken(tokenStr string) (id uint, username, role string, err error) {
	claims, err := s.svc.TokenService().Parse(tokenStr)
	if err != nil {
		return 0, "", "", err
	}

	uid, err := strconv.ParseUint(claims.User.ID, 10, 32)
	if err != nil {
		return 0, "", "", err
	}

	if r, ok := claims.User.Attributes["role"].(string); ok {
		role = r
	}
	return uint(uid), claims.User.Name, role, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(hashed), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
