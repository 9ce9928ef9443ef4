package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/metrics"
)

// RedisCache caches movie ratings and review pages
type RedisCache struct {
	client         *redis.Client
	movieRatingTTL time.Duration
	reviewsListTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, movieRatingTTL, reviewsListTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         client,
		movieRatingTTL: movieRatingTTL,
		reviewsListTTL: reviewsListTTL,
	}
}

func movieRatingKey(movieID uuid.UUID) string {
	return fmt.Sprintf("movie:%s:rating", movieID)
}

func reviewsListKey(movieID uuid.UUID, limit, offset int) string {
	return fmt.Sprintf("movie:%s:reviews:limit:%d:offset:%d", movieID, limit, offset)
}

func movieCacheKeysSet(movieID uuid.UUID) string {
	return fmt.Sprintf("movie:%s:cache_keys", movieID)
}

// GetMovieRating retrieves a cached average rating; domain.ErrNotFound on a miss
func (c *RedisCache) GetMovieRating(ctx context.Context, movieID uuid.UUID) (float64, error) {
	val, err := c.client.Get(ctx, movieRatingKey(movieID)).Float64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheLookup("movie_rating", false)
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	metrics.RecordCacheLookup("movie_rating", true)
	return val, nil
}

// SetMovieRating stores a movie's average rating
func (c *RedisCache) SetMovieRating(ctx context.Context, movieID uuid.UUID, rating float64) error {
	return c.client.Set(ctx, movieRatingKey(movieID), rating, c.movieRatingTTL).Err()
}

// InvalidateMovieRating removes a movie's cached rating
func (c *RedisCache) InvalidateMovieRating(ctx context.Context, movieID uuid.UUID) error {
	return c.client.Del(ctx, movieRatingKey(movieID)).Err()
}

// GetReviewsList retrieves a cached page of a movie's reviews; domain.ErrNotFound on a miss
func (c *RedisCache) GetReviewsList(ctx context.Context, movieID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	val, err := c.client.Get(ctx, reviewsListKey(movieID, limit, offset)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheLookup("reviews_list", false)
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var reviews []*domain.Review
	if err := json.Unmarshal(val, &reviews); err != nil {
		return nil, err
	}

	metrics.RecordCacheLookup("reviews_list", true)
	return reviews, nil
}

// SetReviewsList stores a page of reviews and tracks its key so the movie's pages
// can be invalidated together
func (c *RedisCache) SetReviewsList(ctx context.Context, movieID uuid.UUID, limit, offset int, reviews []*domain.Review) error {
	key := reviewsListKey(movieID, limit, offset)
	trackingKey := movieCacheKeysSet(movieID)

	data, err := json.Marshal(reviews)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.reviewsListTTL)
	pipe.SAdd(ctx, trackingKey, key)
	pipe.Expire(ctx, trackingKey, c.reviewsListTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateReviewsList removes every cached review page of a movie
func (c *RedisCache) InvalidateReviewsList(ctx context.Context, movieID uuid.UUID) error {
	trackingKey := movieCacheKeysSet(movieID)

	keys, err := c.client.SMembers(ctx, trackingKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	keys = append(keys, trackingKey)
	return c.client.Unlink(ctx, keys...).Err()
}

// InvalidateMovie drops every cache entry of a movie
func (c *RedisCache) InvalidateMovie(ctx context.Context, movieID uuid.UUID) error {
	if err := c.InvalidateMovieRating(ctx, movieID); err != nil {
		return err
	}
	return c.InvalidateReviewsList(ctx, movieID)
}
