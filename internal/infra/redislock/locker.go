package redislock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"campbook/internal/pkg/config"
	"campbook/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "campbook:site-lock:"

// unlockScript deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SiteLocker serializes hold creation for a site across instances.
type SiteLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSiteLocker(client *redis.Client, ttl time.Duration) *SiteLocker {
	return &SiteLocker{client: client, ttl: ttl}
}

// NewClient returns nil when no address is configured or the server does
// not answer, in which case bookings run without the distributed lock.
func NewClient(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, site lock disabled", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// Lock acquires the site key with SET NX PX. A held key fails fast with
// errs.ErrSiteLocked; the caller retries the request.
func (l *SiteLocker) Lock(ctx context.Context, siteID uuid.UUID) (func(), error) {
	token, err := newToken()
	if err != nil {
		return nil, errs.Wrap(err, "failed to generate lock token")
	}
	key := keyPrefix + siteID.String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, errs.Wrapf(err, "failed to lock site %s", siteID)
	}
	if !ok {
		return nil, errs.Wrapf(errs.ErrSiteLocked, "site %s", siteID)
	}

	return func() {
		// the request context may already be cancelled
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := unlockScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			slog.Warn("failed to release site lock", "site_id", siteID, "error", err)
		}
	}, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
