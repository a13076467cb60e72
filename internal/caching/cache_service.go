package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"hospitalhub/internal/models"
)

const keyPrefix = "hospitalhub"

// CacheService is a read-through helper: a nil result with a nil error is a
// cache miss and callers fall back to storage.
type CacheService interface {
	// Hospital lookups
	GetHospital(ctx context.Context, code string) (*models.Hospital, error)
	SetHospital(ctx context.Context, hospital *models.Hospital, ttl time.Duration) error
	DeleteHospital(ctx context.Context, code string) error

	// Cross-tenant statistics
	GetAggregateStats(ctx context.Context) (*models.AggregateStats, error)
	SetAggregateStats(ctx context.Context, stats *models.AggregateStats, ttl time.Duration) error

	// Session revocation
	RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
	// RevokeUserSessions invalidates every session of userID issued at or
	// before at. UserSessionsRevokedAt returns the zero time when none is set.
	RevokeUserSessions(ctx context.Context, userID string, at time.Time, ttl time.Duration) error
	UserSessionsRevokedAt(ctx context.Context, userID string) (time.Time, error)

	Ping(ctx context.Context) error
}

func HospitalKey(code string) string {
	return fmt.Sprintf("%s:hospital:%s", keyPrefix, code)
}

func AggregateStatsKey() string {
	return keyPrefix + ":stats:aggregate"
}

func RevokedSessionKey(sessionID string) string {
	return fmt.Sprintf("%s:revoked:%s", keyPrefix, sessionID)
}

func RevokedUserKey(userID string) string {
	return fmt.Sprintf("%s:revoked-user:%s", keyPrefix, userID)
}

type redisCacheService struct {
	client redis.UniversalClient
}

// NewRedisClient builds a client from an address that may carry a redis://
// or rediss:// scheme. Connectivity is checked but a failed ping is only logged.
func NewRedisClient(addr, password string, db int, logger zerolog.Logger) *redis.Client {
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	} else {
		logger.Info().Str("addr", parsedAddr).Msg("redis connected")
	}
	return client
}

func NewRedisCacheService(client redis.UniversalClient) CacheService {
	return &redisCacheService{client: client}
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetHospital(ctx context.Context, code string) (*models.Hospital, error) {
	var hospital models.Hospital
	found, err := r.getJSON(ctx, HospitalKey(code), &hospital)
	if err != nil || !found {
		return nil, err
	}
	return &hospital, nil
}

func (r *redisCacheService) SetHospital(ctx context.Context, hospital *models.Hospital, ttl time.Duration) error {
	return r.setJSON(ctx, HospitalKey(hospital.Code), hospital, ttl)
}

func (r *redisCacheService) DeleteHospital(ctx context.Context, code string) error {
	return r.client.Del(ctx, HospitalKey(code)).Err()
}

func (r *redisCacheService) GetAggregateStats(ctx context.Context) (*models.AggregateStats, error) {
	var stats models.AggregateStats
	found, err := r.getJSON(ctx, AggregateStatsKey(), &stats)
	if err != nil || !found {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetAggregateStats(ctx context.Context, stats *models.AggregateStats, ttl time.Duration) error {
	return r.setJSON(ctx, AggregateStatsKey(), stats, ttl)
}

func (r *redisCacheService) RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, RevokedSessionKey(sessionID), "1", ttl).Err()
}

func (r *redisCacheService) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, RevokedSessionKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisCacheService) RevokeUserSessions(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, RevokedUserKey(userID), at.Unix(), ttl).Err()
}

func (r *redisCacheService) UserSessionsRevokedAt(ctx context.Context, userID string) (time.Time, error) {
	unix, err := r.client.Get(ctx, RevokedUserKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return time.Unix(unix, 0).UTC(), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// localCache is used when no Redis address is configured. Lookups always
// miss; revocations are held in process memory until they expire.
type localCache struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	users   map[string]localUserRevocation
	now     func() time.Time
}

type localUserRevocation struct {
	at      time.Time
	expires time.Time
}

func NewLocalCache() CacheService {
	return &localCache{
		revoked: make(map[string]time.Time),
		users:   make(map[string]localUserRevocation),
		now:     time.Now,
	}
}

func (*localCache) GetHospital(context.Context, string) (*models.Hospital, error) { return nil, nil }
func (*localCache) SetHospital(context.Context, *models.Hospital, time.Duration) error {
	return nil
}
func (*localCache) DeleteHospital(context.Context, string) error { return nil }
func (*localCache) GetAggregateStats(context.Context) (*models.AggregateStats, error) {
	return nil, nil
}
func (*localCache) SetAggregateStats(context.Context, *models.AggregateStats, time.Duration) error {
	return nil
}
func (*localCache) Ping(context.Context) error { return nil }

func (l *localCache) RevokeSession(_ context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep()
	l.revoked[sessionID] = l.now().Add(ttl)
	return nil
}

func (l *localCache) IsSessionRevoked(_ context.Context, sessionID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	expires, ok := l.revoked[sessionID]
	return ok && l.now().Before(expires), nil
}

func (l *localCache) RevokeUserSessions(_ context.Context, userID string, at time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep()
	l.users[userID] = localUserRevocation{at: at.Truncate(time.Second).UTC(), expires: l.now().Add(ttl)}
	return nil
}

func (l *localCache) UserSessionsRevokedAt(_ context.Context, userID string) (time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rev, ok := l.users[userID]
	if !ok || !l.now().Before(rev.expires) {
		return time.Time{}, nil
	}
	return rev.at, nil
}

// sweep drops expired entries; callers hold mu.
func (l *localCache) sweep() {
	now := l.now()
	for id, expires := range l.revoked {
		if !now.Before(expires) {
			delete(l.revoked, id)
		}
	}
	for id, rev := range l.users {
		if !now.Before(rev.expires) {
			delete(l.users, id)
		}
	}
}
