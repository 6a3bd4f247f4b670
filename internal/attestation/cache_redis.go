package attestation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"nilgate/pkg/domain"
)

const cacheKeyPrefix = "att:"

// CachedStore is a read-through Redis cache in front of another Store. The TTL
// is short: the cache absorbs repeated reads within a compliance evaluation
// burst, while expiry semantics stay correct because ValidAt is always applied
// to the decoded records at read time. Put writes through and drops the key.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (c *CachedStore) Put(ctx context.Context, a *Attestation) error {
	if err := c.inner.Put(ctx, a); err != nil {
		return err
	}
	// Best-effort invalidation; a stale entry only survives until TTL.
	if err := c.client.Del(ctx, c.key(a.Subject, a.Type)).Err(); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "attestation cache invalidation failed",
			"subject", a.Subject.ID,
			"type", a.Type.String(),
			"error", err,
		)
	}
	return nil
}

func (c *CachedStore) Query(ctx context.Context, subject domain.Subject, typ domain.AttestationType) ([]*Attestation, error) {
	key := c.key(subject, typ)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached []*Attestation
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		// Corrupt entry: fall through to the inner store and rewrite.
	} else if !errors.Is(err, redis.Nil) && c.logger != nil {
		c.logger.WarnContext(ctx, "attestation cache read failed", "error", err)
	}

	records, err := c.inner.Query(ctx, subject, typ)
	if err != nil {
		return nil, err
	}
	if encoded, jsonErr := json.Marshal(records); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, encoded, c.ttl).Err(); setErr != nil && c.logger != nil {
			c.logger.WarnContext(ctx, "attestation cache write failed", "error", setErr)
		}
	}
	return records, nil
}

func (c *CachedStore) key(subject domain.Subject, typ domain.AttestationType) string {
	return cacheKeyPrefix + subject.Kind.String() + ":" + subject.ID + ":" + typ.String()
}
