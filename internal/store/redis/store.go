package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSeenTTL is the default TTL for seen-recommendation sets. Kept in
	// step with the session TTL so a restart resumes sessions intact.
	DefaultSeenTTL = 30 * time.Minute
	// DefaultCrumbTTL is the default TTL for rate-limit breadcrumbs
	DefaultCrumbTTL = 5 * time.Minute
)

// Store handles Redis operations for session persistence: seen-recommendation
// sets and per-surface breadcrumbs.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// AddSeen records ids in the session's seen set and refreshes its TTL.
func (s *Store) AddSeen(ctx context.Context, session string, ids []string, ttl time.Duration) error {
	if len(ids) == 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultSeenTTL
	}

	key := SeenKey(session)
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save seen set: %w", err)
	}
	return nil
}

// SeenMembers returns every id in the session's seen set. A missing key is an
// empty set, not an error.
func (s *Store) SeenMembers(ctx context.Context, session string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, SeenKey(session)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load seen set: %w", err)
	}
	return ids, nil
}

// ClearSeen drops the session's seen set.
func (s *Store) ClearSeen(ctx context.Context, session string) error {
	if err := s.client.Del(ctx, SeenKey(session)).Err(); err != nil {
		return fmt.Errorf("failed to clear seen set: %w", err)
	}
	return nil
}

// SetBreadcrumb marks a recommendation surface as freshly served for this
// session, so it is not refetched until the breadcrumb expires.
func (s *Store) SetBreadcrumb(ctx context.Context, session, surface string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultCrumbTTL
	}
	if err := s.client.Set(ctx, CrumbKey(session, surface), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set breadcrumb: %w", err)
	}
	return nil
}

// HasBreadcrumb reports whether the session's breadcrumb on surface is still
// live.
func (s *Store) HasBreadcrumb(ctx context.Context, session, surface string) (bool, error) {
	err := s.client.Get(ctx, CrumbKey(session, surface)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check breadcrumb: %w", err)
	}
	return true, nil
}

// DropSession removes everything persisted for a session: the seen set and
// all of its breadcrumbs.
func (s *Store) DropSession(ctx context.Context, session string) error {
	if err := s.client.Del(ctx, SeenKey(session)).Err(); err != nil {
		return fmt.Errorf("failed to drop seen set: %w", err)
	}

	iter := s.client.Scan(ctx, 0, CrumbPattern(session), 64).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to drop breadcrumb %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan breadcrumbs: %w", err)
	}
	return nil
}

// Ping verifies the connection, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
