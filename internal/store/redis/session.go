package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/voicelist/internal/domain"
)

// taskIDLayout is the microsecond timestamp prefix of task ids.
const taskIDLayout = "20060102150405"

// maxIDAttempts bounds the disambiguator search in AddTask.
const maxIDAttempts = 1000

// session is the per-turn handle returned by Store.Resolve.
type session struct {
	store *Store
	key   string
	user  domain.User
}

func (s *session) Key() string {
	return s.key
}

func (s *session) User() domain.User {
	return s.user
}

func (s *session) SetState(ctx context.Context, state domain.State) error {
	if err := s.store.client.HSet(ctx, UserKey(s.key), fieldState, string(state)).Err(); err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}
	return nil
}

func (s *session) SetCurrentDate(ctx context.Context, date string) error {
	if err := s.store.client.HSet(ctx, UserKey(s.key), fieldCurrentDate, date).Err(); err != nil {
		return fmt.Errorf("failed to set current date: %w", err)
	}
	return nil
}

func (s *session) AwaitTask(ctx context.Context, date string) error {
	err := s.store.client.HSet(ctx, UserKey(s.key),
		fieldCurrentDate, date,
		fieldState, string(domain.StateAwaitingTask),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to stage task date: %w", err)
	}
	return nil
}

// AddTask stores task under a fresh id derived from its creation time.
// A shopping task without a parent becomes the parent of its own group.
func (s *session) AddTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = s.store.now()
	}
	if task.Importance == 0 {
		task.Importance = domain.DefaultImportance
	}

	base := TaskID(task.CreatedAt)
	ownParent := task.IsShopping && task.ParentTask == ""

	for n := 0; n < maxIDAttempts; n++ {
		id := base
		if n > 0 {
			id = fmt.Sprintf("%s-%d", base, n)
		}
		task.ID = id
		if ownParent {
			task.ParentTask = id
		}

		data, err := json.Marshal(task)
		if err != nil {
			return domain.Task{}, fmt.Errorf("failed to marshal task: %w", err)
		}

		created, err := s.store.client.HSetNX(ctx, TasksKey(s.key), id, data).Result()
		if err != nil {
			return domain.Task{}, fmt.Errorf("failed to save task: %w", err)
		}
		if !created {
			continue
		}

		member := redis.Z{Score: float64(task.CreatedAt.UnixMicro()), Member: id}
		if err := s.store.client.ZAdd(ctx, TaskOrderKey(s.key), member).Err(); err != nil {
			return domain.Task{}, fmt.Errorf("failed to index task: %w", err)
		}
		return task, nil
	}

	return domain.Task{}, fmt.Errorf("failed to allocate task id after %d attempts", maxIDAttempts)
}

// Tasks returns tasks in insertion order. Entries missing from the order
// index (a failed ZADD) are appended sorted by id.
func (s *session) Tasks(ctx context.Context) ([]domain.Task, error) {
	var (
		order *redis.StringSliceCmd
		all   *redis.MapStringStringCmd
	)
	_, err := s.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		order = pipe.ZRange(ctx, TaskOrderKey(s.key), 0, -1)
		all = pipe.HGetAll(ctx, TasksKey(s.key))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}

	raw := all.Val()
	ids := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, id := range order.Val() {
		if _, ok := raw[id]; ok && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	var orphans []string
	for id := range raw {
		if !seen[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	ids = append(ids, orphans...)

	tasks := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		var t domain.Task
		if err := json.Unmarshal([]byte(raw[id]), &t); err != nil {
			// Skip tasks that couldn't be decoded
			continue
		}
		t.ID = id
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *session) DeleteTask(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := s.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, TasksKey(s.key), id)
		pipe.ZRem(ctx, TaskOrderKey(s.key), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if removed.Val() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// TaskID formats t as YYYYMMDDhhmmssffffff.
func TaskID(t time.Time) string {
	return t.Format(taskIDLayout) + fmt.Sprintf("%06d", t.Nanosecond()/int(time.Microsecond))
}
