package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/you/nirogsvc/domain"
)

// CachedFacilityRepository keeps candidate lists in Redis in front of another
// FacilityRepository. Cache failures degrade to the inner repository.
type CachedFacilityRepository struct {
	inner  domain.FacilityRepository
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedFacilityRepository wraps inner with a cache-aside layer.
func NewCachedFacilityRepository(inner domain.FacilityRepository, client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) domain.FacilityRepository {
	return &CachedFacilityRepository{
		inner:  inner,
		client: client,
		prefix: "facilities:candidates:",
		ttl:    ttl,
		logger: logger,
	}
}

func (r *CachedFacilityRepository) key(facilityType string, limit int) string {
	return fmt.Sprintf("%s%s:%d", r.prefix, facilityType, limit)
}

// FindCandidates implements domain.FacilityRepository
func (r *CachedFacilityRepository) FindCandidates(ctx context.Context, facilityType string, limit int) ([]*domain.Facility, error) {
	key := r.key(facilityType, limit)

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []*domain.Facility
		if uerr := json.Unmarshal(data, &cached); uerr == nil {
			return cached, nil
		}
		r.logger.Warn().Str("key", key).Msg("discarding undecodable facility cache entry")
	case !errors.Is(err, redis.Nil):
		r.logger.Warn().Err(err).Str("key", key).Msg("facility cache read failed")
	}

	facilities, err := r.inner.FindCandidates(ctx, facilityType, limit)
	if err != nil {
		return nil, err
	}

	if payload, merr := json.Marshal(facilities); merr == nil {
		if serr := r.client.Set(ctx, key, payload, r.ttl).Err(); serr != nil {
			r.logger.Warn().Err(serr).Str("key", key).Msg("facility cache write failed")
		}
	}
	return facilities, nil
}

// Create implements domain.FacilityRepository and drops cached lists for the type.
func (r *CachedFacilityRepository) Create(ctx context.Context, f *domain.Facility) error {
	if err := r.inner.Create(ctx, f); err != nil {
		return err
	}
	r.invalidate(ctx, f.Type)
	return nil
}

func (r *CachedFacilityRepository) invalidate(ctx context.Context, facilityType string) {
	iter := r.client.Scan(ctx, 0, r.prefix+facilityType+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn().Err(err).Str("type", facilityType).Msg("facility cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn().Err(err).Str("type", facilityType).Msg("facility cache invalidation failed")
	}
}
