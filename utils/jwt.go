package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	redis "github.com/redis/go-redis/v9"

	"github.com/sunilgupta-arch/taskflow/models"
)

// RedisClient is an optional shared Redis client used for token revocation
// and notification publishing. It is nil when REDIS_ADDR is not configured;
// revocation is then disabled and notifications are dropped.
var RedisClient *redis.Client

func init() {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return
	}
	opts := &redis.Options{Addr: addr}
	if p := os.Getenv("REDIS_PASS"); p != "" {
		opts.Password = p
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		var dbn int
		_, _ = fmt.Sscanf(dbStr, "%d", &dbn)
		opts.DB = dbn
	}
	rc := redis.NewClient(opts)
	if err := rc.Ping(context.Background()).Err(); err != nil {
		fmt.Printf("warning: redis ping failed: %v\n", err)
		return
	}
	RedisClient = rc
}

type contextKey string

const (
	PrincipalKey = contextKey("principal")
	RequestIDKey = contextKey("requestID")
)

// GenerateJWT issues an access token for the user carrying id, name, role
// and organization type.
func GenerateJWT(u *models.User) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}

	now := time.Now()
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"id":   u.ID,
		"name": u.Name,
		"role": u.Role,
		"org":  u.OrgType,
		"exp":  now.Add(24 * time.Hour).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  jti,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ValidateAccessToken verifies signature and registered claims and returns
// the principal the token was issued for.
func ValidateAccessToken(tokenString string) (models.Principal, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return models.Principal{}, errors.New("JWT_SECRET is not set")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		if err != nil && strings.Contains(err.Error(), "expired") {
			return models.Principal{}, errors.New("token expired")
		}
		return models.Principal{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, errors.New("invalid claims")
	}

	if jti, ok := claims["jti"].(string); ok && IsTokenRevoked(jti) {
		return models.Principal{}, errors.New("token revoked")
	}

	var p models.Principal
	if id, ok := claims["id"].(float64); ok {
		p.ID = uint(id)
	}
	if name, ok := claims["name"].(string); ok {
		p.Name = name
	}
	if role, ok := claims["role"].(string); ok {
		p.Role = role
	}
	if org, ok := claims["org"].(string); ok {
		p.OrgType = org
	}
	if p.ID == 0 || p.Role == "" {
		return models.Principal{}, errors.New("invalid token claims")
	}
	return p, nil
}

// RevokeToken blacklists a token id until its natural expiry. No-op without
// Redis.
func RevokeToken(jti string, ttl time.Duration) {
	if RedisClient == nil || jti == "" {
		return
	}
	_ = RedisClient.Set(context.Background(), "revoked:"+jti, "1", ttl).Err()
}

// IsTokenRevoked reports whether the token id is blacklisted. Without Redis
// revocation is disabled and this always returns false.
func IsTokenRevoked(jti string) bool {
	if RedisClient == nil || jti == "" {
		return false
	}
	n, err := RedisClient.Exists(context.Background(), "revoked:"+jti).Result()
	return err == nil && n > 0
}

// GetPrincipal returns the authenticated principal attached by the auth
// middleware.
func GetPrincipal(r *http.Request) (models.Principal, bool) {
	p, ok := r.Context().Value(PrincipalKey).(models.Principal)
	return p, ok
}
