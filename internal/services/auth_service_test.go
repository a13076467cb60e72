package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"hospitalhub/internal/caching"
	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
)

const testSecret = "test-session-secret"

type SessionServiceTestSuite struct {
	suite.Suite
	userRepo     *MockUserRepository
	hospitalRepo *MockHospitalRepository
	cache        *MockCacheService
	service      SessionService
	now          time.Time
}

func (suite *SessionServiceTestSuite) SetupTest() {
	suite.userRepo = &MockUserRepository{}
	suite.hospitalRepo = &MockHospitalRepository{}
	suite.cache = &MockCacheService{}
	suite.now = time.Now().Truncate(time.Second)

	users := NewUserService(suite.userRepo, newFakeIDs(), suite.cache, zerolog.Nop())
	hospitals := NewHospitalService(suite.hospitalRepo, users, &MockProvisioner{}, caching.NewLocalCache(), &passthroughTx{}, zerolog.Nop())

	svc, err := NewSessionService(SessionConfig{Secret: testSecret}, users, hospitals, suite.cache, zerolog.Nop())
	require.NoError(suite.T(), err)
	svc.(*sessionService).now = func() time.Time { return suite.now }
	suite.service = svc
}

func (suite *SessionServiceTestSuite) TearDownTest() {
	suite.userRepo.AssertExpectations(suite.T())
	suite.hospitalRepo.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestSessionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceTestSuite))
}

func (suite *SessionServiceTestSuite) userWithPassword(id string, code *string, role models.Role, password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(suite.T(), err)
	return &models.User{ID: id, Email: id + "@example.com", Role: role, HospitalCode: code, IsActive: true, PasswordHash: string(hash)}
}

func (suite *SessionServiceTestSuite) parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, suite.service.Keyfunc)
	return claims, err
}

func (suite *SessionServiceTestSuite) TestIssue_RoundTrip() {
	code := "acme"
	token, issued, err := suite.service.Issue(&models.User{ID: "5", Email: "a@b.c", Role: models.RoleBasicUser, HospitalCode: &code})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.now.Add(DefaultSessionTTL), issued.ExpiresAt.Time)
	assert.NotEmpty(suite.T(), issued.ID)

	claims, err := suite.parse(token)
	require.NoError(suite.T(), err)
	identity, err := claims.Identity()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "5", identity.UserID)
	assert.Equal(suite.T(), models.RoleBasicUser, identity.Role)
	assert.Equal(suite.T(), "acme", identity.HospitalCode)
	assert.Equal(suite.T(), issued.ID, identity.SessionID)
}

func (suite *SessionServiceTestSuite) TestKeyfunc_RejectsForeignTokens() {
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{UserID: "1", Role: models.RoleSuperAdmin}).
		SignedString([]byte("someone-else"))
	require.NoError(suite.T(), err)
	_, err = suite.parse(forged)
	assert.Error(suite.T(), err)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(suite.T(), err)
	rs, err := jwt.NewWithClaims(jwt.SigningMethodRS256, &SessionClaims{UserID: "1", Role: models.RoleSuperAdmin}).SignedString(key)
	require.NoError(suite.T(), err)
	_, err = suite.parse(rs)
	assert.Error(suite.T(), err)
}

func (suite *SessionServiceTestSuite) TestClaimsIdentity_RejectsUnknownRole() {
	_, err := (&SessionClaims{UserID: "1", Role: "Owner"}).Identity()
	assert.ErrorIs(suite.T(), err, common.ErrUnauthenticated)

	id, err := (&SessionClaims{UserID: "1", Role: models.RoleSuperAdmin, HospitalCode: "acme"}).Identity()
	require.NoError(suite.T(), err)
	assert.False(suite.T(), id.HasTenant())
}

func (suite *SessionServiceTestSuite) TestLogin_SuperAdmin() {
	user := suite.userWithPassword("1", nil, models.RoleSuperAdmin, "root-password")
	suite.userRepo.On("GetByEmail", mock.Anything, "1@example.com").Return(user, nil)

	session, err := suite.service.Login(context.Background(), "1@example.com", "root-password")
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), session.Token)
	assert.Equal(suite.T(), "1", session.User.ID)
}

func (suite *SessionServiceTestSuite) TestLogin_DeactivatedHospital() {
	code := "acme"
	user := suite.userWithPassword("5", &code, models.RoleBasicUser, "user-password")
	suite.userRepo.On("GetByEmail", mock.Anything, "5@example.com").Return(user, nil)
	suite.hospitalRepo.On("GetByCode", mock.Anything, "acme").Return(&models.Hospital{Code: "acme", IsActive: false}, nil)

	_, err := suite.service.Login(context.Background(), "5@example.com", "user-password")
	assert.ErrorIs(suite.T(), err, common.ErrUnauthenticated)
}

func (suite *SessionServiceTestSuite) TestLogin_DeactivatedUser() {
	code := "acme"
	user := suite.userWithPassword("5", &code, models.RoleBasicUser, "user-password")
	user.IsActive = false
	suite.userRepo.On("GetByEmail", mock.Anything, "5@example.com").Return(user, nil)

	_, err := suite.service.Login(context.Background(), "5@example.com", "user-password")
	assert.ErrorIs(suite.T(), err, common.ErrUnauthenticated)
}

func (suite *SessionServiceTestSuite) TestRevoke_UsesRemainingLifetime() {
	identity := common.Identity{SessionID: "jti-1", ExpiresAt: suite.now.Add(time.Hour)}
	suite.cache.On("RevokeSession", mock.Anything, "jti-1", time.Hour).Return(nil)

	require.NoError(suite.T(), suite.service.Revoke(context.Background(), identity))
}

func (suite *SessionServiceTestSuite) TestIsRevoked() {
	suite.cache.On("IsSessionRevoked", mock.Anything, "gone").Return(true, nil)
	suite.cache.On("IsSessionRevoked", mock.Anything, "flaky").Return(false, errors.New("redis down"))

	assert.True(suite.T(), suite.service.IsRevoked(context.Background(), common.Identity{SessionID: "gone"}))
	assert.False(suite.T(), suite.service.IsRevoked(context.Background(), common.Identity{SessionID: "flaky"}))
	assert.False(suite.T(), suite.service.IsRevoked(context.Background(), common.Identity{}))
}

func (suite *SessionServiceTestSuite) TestIsRevoked_UserRevokedAfterIssue() {
	revokedAt := suite.now
	suite.cache.On("IsSessionRevoked", mock.Anything, mock.Anything).Return(false, nil)
	suite.cache.On("UserSessionsRevokedAt", mock.Anything, "5").Return(revokedAt, nil)
	suite.cache.On("UserSessionsRevokedAt", mock.Anything, "6").Return(time.Time{}, nil)
	suite.cache.On("UserSessionsRevokedAt", mock.Anything, "7").Return(time.Time{}, errors.New("redis down"))

	older := common.Identity{UserID: "5", SessionID: "a", IssuedAt: revokedAt.Add(-time.Hour)}
	sameSecond := common.Identity{UserID: "5", SessionID: "b", IssuedAt: revokedAt}
	newer := common.Identity{UserID: "5", SessionID: "c", IssuedAt: revokedAt.Add(time.Second)}

	assert.True(suite.T(), suite.service.IsRevoked(context.Background(), older))
	assert.True(suite.T(), suite.service.IsRevoked(context.Background(), sameSecond))
	assert.False(suite.T(), suite.service.IsRevoked(context.Background(), newer))
	assert.False(suite.T(), suite.service.IsRevoked(context.Background(), common.Identity{UserID: "6", SessionID: "d"}))
	assert.False(suite.T(), suite.service.IsRevoked(context.Background(), common.Identity{UserID: "7", SessionID: "e"}))
}

func (suite *SessionServiceTestSuite) TestIssue_IdentityCarriesIssuedAt() {
	code := "acme"
	token, _, err := suite.service.Issue(&models.User{ID: "5", Role: models.RoleBasicUser, HospitalCode: &code})
	require.NoError(suite.T(), err)

	claims := new(SessionClaims)
	_, err = jwt.ParseWithClaims(token, claims, suite.service.Keyfunc)
	require.NoError(suite.T(), err)
	identity, err := claims.Identity()
	require.NoError(suite.T(), err)
	assert.True(suite.T(), identity.IssuedAt.Equal(suite.now))
}

func TestNewSessionService_CapsTTL(t *testing.T) {
	svc, err := NewSessionService(SessionConfig{Secret: testSecret, TTL: 30 * 24 * time.Hour}, nil, nil, caching.NewLocalCache(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, MaxSessionTTL, svc.(*sessionService).ttl)
}

func TestNewSessionService_RequiresSecret(t *testing.T) {
	_, err := NewSessionService(SessionConfig{}, nil, nil, caching.NewLocalCache(), zerolog.Nop())
	assert.Error(t, err)
}

func TestSessionService_VerifiesProviderTokensFromJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := map[string]interface{}{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "provider-1",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	defer srv.Close()

	svc, err := NewSessionService(SessionConfig{Secret: testSecret, JWKSURL: srv.URL}, nil, nil, caching.NewLocalCache(), zerolog.Nop())
	require.NoError(t, err)
	defer svc.Close()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, &SessionClaims{
		UserID:       "ext-42",
		Role:         models.RoleBasicUser,
		HospitalCode: "acme",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token.Header["kid"] = "provider-1"
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	claims := &SessionClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, svc.Keyfunc)
	require.NoError(t, err)
	assert.Equal(t, "ext-42", claims.UserID)
}
