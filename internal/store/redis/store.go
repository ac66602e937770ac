package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/voicelist/internal/domain"
	"github.com/MrSnakeDoc/voicelist/internal/repository"
)

// user hash fields
const (
	fieldID          = "id"
	fieldCreatedAt   = "created_at"
	fieldLastActive  = "last_active"
	fieldState       = "state"
	fieldCurrentDate = "current_date"
)

// Store handles Redis operations for user records and their tasks
type Store struct {
	client *redis.Client
	now    func() time.Time
}

var _ repository.Users = (*Store)(nil)

// NewStore creates a new Redis store. now may be nil (time.Now).
func NewStore(client *redis.Client, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		client: client,
		now:    now,
	}
}

// Resolve implements repository.Users.
//
// id and created_at are only written when absent; last_active is always
// refreshed. The writes and the read-back run in one MULTI/EXEC.
func (s *Store) Resolve(ctx context.Context, userID string) (repository.UserSession, error) {
	key := RecordKey(userID)
	hkey := UserKey(key)
	now := s.now().UTC().Format(time.RFC3339)

	var fields *redis.MapStringStringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, hkey, fieldID, userID)
		pipe.HSetNX(ctx, hkey, fieldCreatedAt, now)
		pipe.HSet(ctx, hkey, fieldLastActive, now)
		fields = pipe.HGetAll(ctx, hkey)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	return &session{
		store: s,
		key:   key,
		user:  decodeUser(key, fields.Val()),
	}, nil
}

// CountUsers counts user records by scanning the key space.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixUser+"*", 0).Iterator()
	for iter.Next(ctx) {
		if _, err := ExtractRecordKey(iter.Val()); err == nil {
			count++
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan users: %w", err)
	}
	return count, nil
}

func decodeUser(key string, fields map[string]string) domain.User {
	u := domain.User{
		ID:          fields[fieldID],
		Key:         key,
		State:       domain.ParseState(fields[fieldState]),
		CurrentDate: fields[fieldCurrentDate],
	}
	if t, err := time.Parse(time.RFC3339, fields[fieldCreatedAt]); err == nil {
		u.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, fields[fieldLastActive]); err == nil {
		u.LastActive = t
	}
	return u
}
