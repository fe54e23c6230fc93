package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/muhammadolammi/interviewmate/internal/apierr"
	"github.com/muhammadolammi/interviewmate/internal/logger"
)

const (
	MsgLoginRequired  = "로그인이 필요합니다."
	MsgNotWhitelisted = "등록되지 않은 사용자입니다. 관리자에게 문의하세요."

	// CodeSignedOut tells the client to drop its session.
	CodeSignedOut = "signed_out"
)

var ErrMissingToken = errors.New("missing bearer token")

// Claims are the access token claims issued by the identity provider.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	dir    Directory
	log    *logger.Logger
}

func NewVerifier(secret string, dir Directory, log *logger.Logger) *Verifier {
	return &Verifier{secret: []byte(secret), dir: dir, log: log.With("component", "auth")}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func (v *Verifier) parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

// Authenticate verifies the token, checks the whitelist and resolves the
// principal's role. Un-whitelisted users get an authorization error with
// CodeSignedOut.
func (v *Verifier) Authenticate(ctx context.Context, token string) (Principal, error) {
	claims, err := v.parse(token)
	if err != nil {
		v.log.Debug("token rejected", "error", err)
		return Principal{}, apierr.Unauthorized(MsgLoginRequired)
	}
	p := Principal{UserID: claims.Subject, Email: strings.ToLower(claims.Email)}

	allowedRole, allowed, err := v.dir.AllowedRole(ctx, p.Email)
	if err != nil {
		v.log.Error("Error checking whitelist", "email", p.Email, "error", err)
		return Principal{}, apierr.Remote("auth_lookup", err)
	}
	if !allowed || p.Email == "" {
		v.log.Warn("user not whitelisted", "user_id", p.UserID, "email", p.Email)
		return Principal{}, apierr.Forbidden(CodeSignedOut, MsgNotWhitelisted)
	}

	role, found, err := v.dir.ProfileRole(ctx, p.UserID)
	switch {
	case err != nil:
		// the user is whitelisted; carry on without a role
		v.log.Error("Error fetching user role", "user_id", p.UserID, "error", err)
	case found:
		p.Role = role
	default:
		p.Role = allowedRole
		if err := v.dir.SyncProfile(ctx, p); err != nil {
			v.log.Warn("failed to sync profile", "user_id", p.UserID, "error", err)
		}
	}
	return p, nil
}

// IssueToken signs an HS256 access token. It backs local development and
// tests; production tokens come from the identity provider.
func IssueToken(secret, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
