package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hospitalhub/internal/caching"
	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
)

const (
	DefaultSessionTTL = 12 * time.Hour
	// MaxSessionTTL bounds session lifetime so a per-user revocation can
	// expire once every token it covers has.
	MaxSessionTTL = 7 * 24 * time.Hour
	sessionIssuer = "hospitalhub"
)

// SessionClaims is the JWT payload of a session.
type SessionClaims struct {
	UserID       string      `json:"uid"`
	Email        string      `json:"email,omitempty"`
	Role         models.Role `json:"role"`
	HospitalCode string      `json:"hospitalCode,omitempty"`
	jwt.RegisteredClaims
}

// Identity converts verified claims into the request identity.
func (c *SessionClaims) Identity() (common.Identity, error) {
	if c.UserID == "" {
		return common.Identity{}, fmt.Errorf("session has no subject: %w", common.ErrUnauthenticated)
	}
	role, err := models.ParseRole(string(c.Role))
	if err != nil {
		return common.Identity{}, fmt.Errorf("session role: %w", common.ErrUnauthenticated)
	}
	id := common.Identity{
		UserID:       c.UserID,
		Email:        c.Email,
		Role:         role,
		HospitalCode: c.HospitalCode,
		SessionID:    c.ID,
	}
	if role == models.RoleSuperAdmin {
		id.HospitalCode = ""
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	return id, nil
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	// JWKSURL enables RS256 bearer tokens from an external identity provider.
	JWKSURL string
}

type SessionService interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Issue(user *models.User) (string, *SessionClaims, error)
	Keyfunc(token *jwt.Token) (interface{}, error)
	Revoke(ctx context.Context, identity common.Identity) error
	IsRevoked(ctx context.Context, identity common.Identity) bool
	Close()
}

type sessionService struct {
	users     UserService
	hospitals HospitalService
	cache     caching.CacheService
	secret    []byte
	ttl       time.Duration
	jwks      *keyfunc.JWKS
	logger    zerolog.Logger
	now       func() time.Time
}

func NewSessionService(
	cfg SessionConfig,
	users UserService,
	hospitals HospitalService,
	cache caching.CacheService,
	logger zerolog.Logger,
) (SessionService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if ttl > MaxSessionTTL {
		logger.Warn().Dur("ttl", ttl).Dur("max", MaxSessionTTL).Msg("session ttl capped")
		ttl = MaxSessionTTL
	}

	s := &sessionService{
		users:     users,
		hospitals: hospitals,
		cache:     cache,
		secret:    []byte(cfg.Secret),
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}

	if cfg.JWKSURL != "" {
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.Warn().Err(err).Str("jwks_url", cfg.JWKSURL).Msg("jwks refresh failed")
			},
		})
		if err != nil {
			return nil, fmt.Errorf("load jwks from %s: %w", cfg.JWKSURL, err)
		}
		s.jwks = jwks
	}
	return s, nil
}

func (s *sessionService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if user.HospitalCode != nil {
		hospital, err := s.hospitals.Get(ctx, *user.HospitalCode)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, fmt.Errorf("hospital no longer exists: %w", common.ErrUnauthenticated)
			}
			return nil, err
		}
		if !hospital.IsActive {
			return nil, fmt.Errorf("hospital is deactivated: %w", common.ErrUnauthenticated)
		}
	}

	token, claims, err := s.Issue(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("session issued")
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Issue signs an HS256 session token for user.
func (s *sessionService) Issue(user *models.User) (string, *SessionClaims, error) {
	now := s.now()
	claims := &SessionClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		HospitalCode: common.SafeString(user.HospitalCode),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return signed, claims, nil
}

// Keyfunc resolves the verification key: the shared secret for HS256
// sessions, the provider key set for RS256 tokens when one is configured.
func (s *sessionService) Keyfunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		return s.secret, nil
	case *jwt.SigningMethodRSA:
		if s.jwks == nil {
			return nil, errors.New("no key set configured for RS256 tokens")
		}
		return s.jwks.Keyfunc(token)
	default:
		return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
	}
}

// Revoke blacklists the session id until the token would have expired anyway.
func (s *sessionService) Revoke(ctx context.Context, identity common.Identity) error {
	if identity.SessionID == "" {
		return nil
	}
	ttl := identity.ExpiresAt.Sub(s.now())
	if err := s.cache.RevokeSession(ctx, identity.SessionID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether the session was logged out, or was issued to
// its user no later than the user's last deactivation or role change.
// An unreachable cache is treated as not revoked.
func (s *sessionService) IsRevoked(ctx context.Context, identity common.Identity) bool {
	if identity.SessionID != "" {
		revoked, err := s.cache.IsSessionRevoked(ctx, identity.SessionID)
		if err != nil {
			s.logger.Warn().Err(err).Msg("session revocation lookup failed")
			return false
		}
		if revoked {
			return true
		}
	}
	if identity.UserID == "" {
		return false
	}
	revokedAt, err := s.cache.UserSessionsRevokedAt(ctx, identity.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", identity.UserID).Msg("user revocation lookup failed")
		return false
	}
	return !revokedAt.IsZero() && !identity.IssuedAt.After(revokedAt)
}

func (s *sessionService) Close() {
	if s.jwks != nil {
		s.jwks.EndBackground()
	}
}
