package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	notificationKeyPrefix = "notification:"
	userIndexKeyPrefix    = "notifications:user:"
)

// RedisStore persists notifications as JSON documents keyed by id, with a
// per-user sorted set scored by creation time for newest-first listing.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		return nil
	}
	return &RedisStore{
		redis:  redisClient,
		tracer: otel.Tracer("slotwise.internal.notifications.store"),
	}
}

// Create stores the notification and indexes it under its user. A zero ID is
// assigned, a zero CreatedAt is stamped.
func (s *RedisStore) Create(ctx context.Context, n *Notification) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if n.UserID == 0 {
		return errors.New("notifications: user id required")
	}

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notifications: marshal notification: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "notifications.store.create")
	defer span.End()

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, notificationKey(n.ID), data, 0)
	pipe.ZAdd(ctx, userIndexKey(n.UserID), redis.Z{
		Score:  float64(n.CreatedAt.UnixNano()),
		Member: n.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("notifications: create notification: %w", err)
	}
	return nil
}

// ListForUser returns up to limit notifications for the user, newest first.
func (s *RedisStore) ListForUser(ctx context.Context, userID int64, limit int64) ([]Notification, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := s.tracer.Start(ctx, "notifications.store.list")
	defer span.End()

	end := int64(-1)
	if limit > 0 {
		end = limit - 1
	}
	ids, err := s.redis.ZRevRange(ctx, userIndexKey(userID), 0, end).Result()
	if err != nil {
		span.RecordError(err)
		if err == redis.Nil {
			return []Notification{}, nil
		}
		return nil, fmt.Errorf("notifications: list index: %w", err)
	}
	if len(ids) == 0 {
		return []Notification{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = notificationKey(id)
	}
	raw, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("notifications: load notifications: %w", err)
	}

	out := make([]Notification, 0, len(raw))
	for _, item := range raw {
		str, ok := item.(string)
		if !ok {
			// Index entry whose document expired or was deleted.
			continue
		}
		var n Notification
		if err := json.Unmarshal([]byte(str), &n); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Get loads a single notification by id.
func (s *RedisStore) Get(ctx context.Context, id string) (*Notification, error) {
	if s == nil || s.redis == nil {
		return nil, ErrNotFound
	}
	if ctx == nil {
		ctx = context.Background()
	}

	raw, err := s.redis.Get(ctx, notificationKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("notifications: load notification: %w", err)
	}
	var n Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return nil, fmt.Errorf("notifications: decode notification: %w", err)
	}
	return &n, nil
}

// MarkRead flips the read flag on a stored notification.
func (s *RedisStore) MarkRead(ctx context.Context, id string) (*Notification, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	n.Read = true

	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("notifications: marshal notification: %w", err)
	}
	if err := s.redis.Set(ctx, notificationKey(id), data, redis.KeepTTL).Err(); err != nil {
		return nil, fmt.Errorf("notifications: update notification: %w", err)
	}
	return n, nil
}

func notificationKey(id string) string {
	return notificationKeyPrefix + id
}

func userIndexKey(userID int64) string {
	return userIndexKeyPrefix + strconv.FormatInt(userID, 10)
}
