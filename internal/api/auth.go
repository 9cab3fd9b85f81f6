package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrUnauthorized = errors.New("unauthorized")

// ProfileLookup resolves an authenticated subject to its profile
type ProfileLookup interface {
	GetProfile(ctx context.Context, userId string) (*models.Profile, error)
}

// Claims are the identity provider's session claims. The subject is the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 session tokens issued by the identity provider
type Authenticator struct {
	secret   []byte
	issuer   string
	profiles ProfileLookup
}

func NewAuthenticator(cfg models.AuthConfig, profiles ProfileLookup) (*Authenticator, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth config requires a JWT secret")
	}
	return &Authenticator{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, profiles: profiles}, nil
}

// IssueToken signs a session token for userId, used by development tooling and tests
func IssueToken(cfg models.AuthConfig, userId, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userId,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns its claims
func (a *Authenticator) Validate(tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		options = append(options, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	return claims, nil
}

// Middleware resolves the bearer token to an Identity. Requests without a
// valid token or profile never reach the handlers.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			writeError(w, fmt.Errorf("%w: missing bearer token", ErrUnauthorized))
			return
		}

		claims, err := a.Validate(tokenString)
		if err != nil {
			zap.L().Debug("Rejected session token", zap.Error(err))
			writeError(w, err)
			return
		}

		profile, err := a.profiles.GetProfile(r.Context(), claims.Subject)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, fmt.Errorf("%w: no profile for session", ErrUnauthorized))
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}

		email := profile.Email
		if email == "" {
			email = claims.Email
		}
		ctx := models.WithIdentity(r.Context(), &models.Identity{
			UserId:   profile.Id,
			Email:    email,
			Role:     profile.Role,
			Currency: profile.Currency,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identity returns the caller, or writes 401 and returns nil
func identity(w http.ResponseWriter, r *http.Request) *models.Identity {
	id := models.GetIdentity(r.Context())
	if id == nil {
		writeError(w, ErrUnauthorized)
	}
	return id
}
