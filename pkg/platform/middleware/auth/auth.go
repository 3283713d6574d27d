// Package auth authenticates callers by bearer JWT or oracle API key and
// gates routes by role.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/audit"
	"surety/pkg/platform/httputil"
	"surety/pkg/requestcontext"
)

type Role string

const (
	RoleWorker   Role = "worker"
	RoleEmployer Role = "employer"
	RoleOracle   Role = "oracle"
)

const (
	HeaderAPIKey = "X-API-Key"
	// OracleKeyActor is the actor recorded for API key callers.
	OracleKeyActor = "oracle-key"
)

func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleWorker, RoleEmployer, RoleOracle:
		return r, nil
	}
	return "", dErrors.New(dErrors.CodeUnauthorized, "unknown role")
}

// Claims carry the wallet in sub and the caller's role.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 access tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
}

func NewTokenService(signingKey, issuer string) *TokenService {
	return &TokenService{signingKey: []byte(signingKey), issuer: issuer}
}

// Issue signs a token for subject. Worker and employer subjects must be wallet
// addresses and are stored lowercased.
func (s *TokenService) Issue(subject string, role Role, ttl time.Duration) (string, error) {
	if _, err := ParseRole(string(role)); err != nil {
		return "", err
	}
	if role != RoleOracle {
		wallet, err := domain.ParseWallet(subject)
		if err != nil {
			return "", err
		}
		subject = string(wallet)
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if _, err := ParseRole(string(claims.Role)); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no subject")
	}
	return claims, nil
}

// HashAPIKey returns the bcrypt hash to configure for an oracle key.
func HashAPIKey(key string) (string, error) {
	if key == "" {
		return "", dErrors.New(dErrors.CodeValidation, "api key cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeValidation, "could not hash api key")
	}
	return string(hashed), nil
}

type TokenValidator interface {
	Validate(tokenString string) (*Claims, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Authenticator struct {
	tokens        TokenValidator
	oracleKeyHash []byte
	logger        *slog.Logger
	audit         AuditPublisher
}

type Option func(*Authenticator)

// WithOracleKeyHash enables X-API-Key authentication for the oracle role.
func WithOracleKeyHash(hash string) Option {
	return func(a *Authenticator) {
		if hash != "" {
			a.oracleKeyHash = []byte(hash)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Authenticator) {
		a.logger = logger
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(a *Authenticator) {
		a.audit = p
	}
}

func NewAuthenticator(tokens TokenValidator, opts ...Option) *Authenticator {
	a := &Authenticator{tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RequireRole admits callers holding one of roles and records the principal
// in the request context.
func (a *Authenticator) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor, role, err := a.authenticate(r)
			if err != nil {
				a.reject(ctx, "", err)
				httputil.WriteError(w, err)
				return
			}
			if !slices.Contains(roles, role) {
				err := dErrors.New(dErrors.CodeForbidden, "role "+string(role)+" may not call this endpoint")
				a.reject(ctx, actor, err)
				httputil.WriteError(w, err)
				return
			}
			ctx = requestcontext.WithPrincipal(ctx, actor, string(role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Authenticator) authenticate(r *http.Request) (string, Role, error) {
	if key := r.Header.Get(HeaderAPIKey); key != "" {
		if a.oracleKeyHash == nil {
			return "", "", dErrors.New(dErrors.CodeUnauthorized, "api keys are not accepted")
		}
		if err := bcrypt.CompareHashAndPassword(a.oracleKeyHash, []byte(key)); err != nil {
			return "", "", dErrors.New(dErrors.CodeUnauthorized, "invalid api key")
		}
		return OracleKeyActor, RoleOracle, nil
	}

	const bearerPrefix = "Bearer "
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
	if !ok || strings.TrimSpace(token) == "" {
		return "", "", dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header")
	}
	claims, err := a.tokens.Validate(strings.TrimSpace(token))
	if err != nil {
		return "", "", err
	}
	return claims.Subject, claims.Role, nil
}

func (a *Authenticator) reject(ctx context.Context, actor string, err error) {
	a.logger.WarnContext(ctx, "request rejected by auth",
		"error", err,
		"client_ip", requestcontext.ClientIP(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	if a.audit == nil {
		return
	}
	_ = a.audit.Emit(ctx, audit.Event{
		Wallet:   actor,
		Action:   string(audit.EventAuthFailed),
		Decision: string(dErrors.CodeOf(err)),
		Reason:   requestcontext.ClientIP(ctx),
	})
}
