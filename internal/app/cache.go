package app

import (
	"context"
	"strings"

	"dugod-content-service/internal/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Cache is the keyed store shared by every reader of a resource.
// Values are stored encoded, so callers never share a mutable cached value.
//
// Every key carries a generation that Invalidate bumps. A fill that read its
// source before an invalidation stores nothing, because SetIfVersion sees the
// newer generation.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Version(ctx context.Context, key string) (int64, error)
	SetIfVersion(ctx context.Context, key string, value any, version int64) (bool, error)
	Invalidate(ctx context.Context, keys ...string) error
}

const (
	activeCountdownKey = "countdown:active"
	questionsKey       = "blackbox:questions"
	answersKeyPrefix   = "blackbox:answers:"
)

func answersKey(userID string) string {
	return answersKeyPrefix + userID
}

// readThrough serves key from the cache and falls back to load on a miss.
// Concurrent misses for the same key share one load, which runs detached from the
// first caller's cancellation so its waiters are not failed by it.
func readThrough[T any](ctx context.Context, cache Cache, sf *singleflight.Group, log logrus.FieldLogger, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if found, err := cache.Get(ctx, key, &cached); err == nil && found {
		metrics.CacheHits.WithLabelValues(keyGroup(key)).Inc()
		return cached, nil
	} else if err != nil {
		log.WithError(err).WithField("key", key).Warn("cache read failed")
	}
	metrics.CacheMisses.WithLabelValues(keyGroup(key)).Inc()

	result, err, _ := sf.Do(key, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		// The generation is read before the source so a concurrent invalidation wins.
		version, verr := cache.Version(ctx, key)
		if verr != nil {
			log.WithError(verr).WithField("key", key).Warn("cache version read failed")
		}
		var again T
		if found, err := cache.Get(ctx, key, &again); err == nil && found {
			return again, nil
		}
		value, err := load(ctx)
		if err != nil {
			return value, err
		}
		if verr != nil {
			return value, nil
		}
		stored, err := cache.SetIfVersion(ctx, key, value, version)
		switch {
		case err != nil:
			log.WithError(err).WithField("key", key).Warn("cache write failed")
		case !stored:
			log.WithField("key", key).Debug("cache fill dropped after invalidation")
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// invalidate drops keys from the cache and detaches in-flight fills for them,
// so the next read loads fresh data instead of joining a stale load.
func invalidate(ctx context.Context, cache Cache, sf *singleflight.Group, log logrus.FieldLogger, keys ...string) {
	for _, key := range keys {
		sf.Forget(key)
	}
	if err := cache.Invalidate(ctx, keys...); err != nil {
		log.WithError(err).WithField("keys", keys).Error("cache invalidation failed")
	}
}

// keyGroup keeps metric cardinality bounded by dropping per-user suffixes.
func keyGroup(key string) string {
	if strings.HasPrefix(key, answersKeyPrefix) {
		return strings.TrimSuffix(answersKeyPrefix, ":")
	}
	return key
}
