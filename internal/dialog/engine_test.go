package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/voicelist/internal/catalog"
	"github.com/MrSnakeDoc/voicelist/internal/domain"
	"github.com/MrSnakeDoc/voicelist/internal/locale"
	"github.com/MrSnakeDoc/voicelist/internal/logger"
	"github.com/MrSnakeDoc/voicelist/internal/nlu"
	"github.com/MrSnakeDoc/voicelist/internal/repository"
	redisstore "github.com/MrSnakeDoc/voicelist/internal/store/redis"
)

var fixedNow = func() time.Time {
	return time.Date(2026, time.October, 18, 10, 30, 0, 0, time.UTC)
}

type harness struct {
	engine *Engine
	store  *redisstore.Store
	mr     *miniredis.Miniredis
	pack   *locale.Pack
}

func newHarness(t *testing.T, products ...catalog.Product) *harness {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	pack, err := locale.Load("en")
	require.NoError(t, err)

	store := redisstore.NewStore(client, nil)
	h := &harness{store: store, mr: mr, pack: pack}
	h.engine = h.newEngine(store, products...)
	return h
}

func (h *harness) newEngine(users repository.Users, products ...catalog.Product) *Engine {
	e := New(users,
		h.pack,
		nlu.NewDateParser(h.pack.Dates, fixedNow),
		nlu.NewShoppingExtractor(h.pack.Shopping, catalog.New(products)),
		logger.Nop(),
		2*time.Second)
	e.now = fixedNow
	return e
}

func (h *harness) say(t *testing.T, userID, command string) Reply {
	t.Helper()
	return h.engine.Handle(context.Background(), userID, command)
}

func (h *harness) session(t *testing.T, userID string) repository.UserSession {
	t.Helper()
	s, err := h.store.Resolve(context.Background(), userID)
	require.NoError(t, err)
	return s
}

func (h *harness) state(t *testing.T, userID string) domain.State {
	t.Helper()
	return h.session(t, userID).User().State
}

func (h *harness) tasks(t *testing.T, userID string) []domain.Task {
	t.Helper()
	tasks, err := h.session(t, userID).Tasks(context.Background())
	require.NoError(t, err)
	return tasks
}

func TestExitFromAnyState(t *testing.T) {
	states := []domain.State{
		domain.StateIdle,
		domain.StateAwaitingDate,
		domain.StateAwaitingTask,
		domain.StateAwaitingTaskDeletion,
	}

	for _, st := range states {
		t.Run(string(st), func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, h.session(t, "u").SetState(context.Background(), st))

			reply := h.say(t, "u", "Stop")
			assert.Equal(t, "Session ended. Goodbye!", reply.Text)
			assert.True(t, reply.EndSession)
			assert.Equal(t, domain.StateIdle, h.state(t, "u"))
		})
	}
}

func TestHelpAndProfile(t *testing.T) {
	h := newHarness(t)

	reply := h.say(t, "u1", "what can you do?")
	assert.Equal(t, h.pack.Replies.Help, reply.Text)
	assert.False(t, reply.EndSession)

	reply = h.say(t, "u1", "my profile")
	key := redisstore.RecordKey("u1")
	assert.Equal(t, "Your profile key: "+key+"\nYour ID: u1", reply.Text)
	assert.False(t, reply.EndSession)
}

func TestCreateTaskFlow(t *testing.T) {
	h := newHarness(t)

	reply := h.say(t, "u", "create task")
	assert.Equal(t, "What date should I create the task for?", reply.Text)
	assert.False(t, reply.EndSession)
	assert.Equal(t, domain.StateAwaitingDate, h.state(t, "u"))

	reply = h.say(t, "u", "tomorrow")
	assert.Equal(t, "OK, date 19.10.2026. What needs to be done?", reply.Text)
	assert.False(t, reply.EndSession)
	assert.Equal(t, domain.StateAwaitingTask, h.state(t, "u"))

	reply = h.say(t, "u", "Call Mom")
	assert.Equal(t, "Task 'call mom' created for 19.10.2026.", reply.Text)
	assert.True(t, reply.EndSession)
	assert.Equal(t, domain.StateIdle, h.state(t, "u"))

	tasks := h.tasks(t, "u")
	require.Len(t, tasks, 1)
	assert.Equal(t, "call mom", tasks[0].Text)
	assert.Equal(t, "19.10.2026", tasks[0].Date)
	assert.Equal(t, domain.DefaultImportance, tasks[0].Importance)
	assert.False(t, tasks[0].IsShopping)

	reply = h.say(t, "u", "show tasks")
	assert.Equal(t, "Your tasks:\n1. call mom (on 19.10.2026)", reply.Text)
	assert.True(t, reply.EndSession)
}

func TestDateNotUnderstoodKeepsWaiting(t *testing.T) {
	h := newHarness(t)

	h.say(t, "u", "new task")
	reply := h.say(t, "u", "whenever you like")
	assert.Equal(t, h.pack.Replies.DateNotUnderstood, reply.Text)
	assert.False(t, reply.EndSession)
	assert.Equal(t, domain.StateAwaitingDate, h.state(t, "u"))
}

func TestEmptyTaskTextReprompts(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session(t, "u").AwaitTask(context.Background(), "25.12.2026"))

	reply := h.say(t, "u", "   ")
	assert.Equal(t, h.pack.Replies.TaskEmpty, reply.Text)
	assert.False(t, reply.EndSession)
	assert.Equal(t, domain.StateAwaitingTask, h.state(t, "u"))
	assert.Empty(t, h.tasks(t, "u"))
}

func TestTaskWithoutStagedDateUsesToday(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session(t, "u").SetState(context.Background(), domain.StateAwaitingTask))

	reply := h.say(t, "u", "water plants")
	assert.Equal(t, "Task 'water plants' created for 18.10.2026.", reply.Text)
}

func TestShoppingTaskFlow(t *testing.T) {
	h := newHarness(t, catalog.Product{ShortName: "Milk", FullName: "Milk 3.2% 1L", URL: "https://shop/milk"})

	h.say(t, "u", "create task")
	h.say(t, "u", "today")
	reply := h.say(t, "u", "buy milk, bread and eggs")
	assert.Equal(t, "Created a shopping list for 18.10.2026: Milk, Bread, Eggs", reply.Text)
	assert.True(t, reply.EndSession)

	tasks := h.tasks(t, "u")
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.True(t, task.IsShopping)
	assert.Equal(t, task.ID, task.ParentTask)
	require.Len(t, task.ShoppingList, 3)
	assert.Equal(t, "Milk 3.2% 1L", task.ShoppingList[0].FullName)
	assert.Equal(t, domain.ShoppingItem{ShortName: "Bread"}, task.ShoppingList[1])
	assert.Equal(t, domain.ShoppingItem{ShortName: "Eggs"}, task.ShoppingList[2])

	reply = h.say(t, "u", "task list")
	assert.Equal(t, "Your tasks:\n1. Shopping for 18.10.2026:\n   • Milk\n   • Bread\n   • Eggs", reply.Text)
}

func TestGlobalCommandsInterruptFlows(t *testing.T) {
	h := newHarness(t)

	h.say(t, "u", "create task")
	reply := h.say(t, "u", "help")
	assert.Equal(t, h.pack.Replies.Help, reply.Text)
	assert.Equal(t, domain.StateAwaitingDate, h.state(t, "u"))

	h.say(t, "u", "tomorrow")
	require.Equal(t, domain.StateAwaitingTask, h.state(t, "u"))

	reply = h.say(t, "u", "new task")
	assert.Equal(t, h.pack.Replies.AskDate, reply.Text)
	assert.Equal(t, domain.StateAwaitingDate, h.state(t, "u"))
}

func TestListEmpty(t *testing.T) {
	h := newHarness(t)

	reply := h.say(t, "u", "show tasks")
	assert.Equal(t, "You have no tasks yet.", reply.Text)
	assert.True(t, reply.EndSession)
}

func TestDeleteWithNothingToDelete(t *testing.T) {
	h := newHarness(t)

	reply := h.say(t, "u", "delete task")
	assert.Equal(t, h.pack.Replies.NothingToDelete, reply.Text)
	assert.False(t, reply.EndSession)
	assert.Equal(t, domain.StateIdle, h.state(t, "u"))
}

func TestDeleteFlow(t *testing.T) {
	h := newHarness(t)

	h.say(t, "u", "create task")
	h.say(t, "u", "25.12")
	h.say(t, "u", "decorate the tree")

	reply := h.say(t, "u", "remove task")
	assert.Equal(t, "Your tasks:\n1. decorate the tree (on 25.12.2026)\n\nWhich task should I delete? Say its number.", reply.Text)
	assert.False(t, reply.EndSession)
	assert.Equal(t, domain.StateAwaitingTaskDeletion, h.state(t, "u"))

	reply = h.say(t, "u", "1")
	assert.Equal(t, "Task 'decorate the tree' deleted.", reply.Text)
	assert.True(t, reply.EndSession)
	assert.Equal(t, domain.StateIdle, h.state(t, "u"))
	assert.Empty(t, h.tasks(t, "u"))

	reply = h.say(t, "u", "show tasks")
	assert.Equal(t, "You have no tasks yet.", reply.Text)
}

func TestDeleteSelectsByInsertionOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sess := h.session(t, "u")
	for _, text := range []string{"first", "second", "third"} {
		_, err := sess.AddTask(ctx, domain.Task{Text: text, Date: "18.10.2026"})
		require.NoError(t, err)
	}

	h.say(t, "u", "delete task")
	reply := h.say(t, "u", "number 2")
	assert.Equal(t, "Task 'second' deleted.", reply.Text)

	tasks := h.tasks(t, "u")
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Text)
	assert.Equal(t, "third", tasks[1].Text)
}

func TestDeleteBadSelection(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		expected func(r locale.Replies) string
	}{
		{"out of range", "5", func(r locale.Replies) string { return r.NoSuchTask }},
		{"zero", "0", func(r locale.Replies) string { return r.NoSuchTask }},
		{"not a number", "the first one", func(r locale.Replies) string { return r.DeletionNotUnderstood }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.session(t, "u").AddTask(context.Background(), domain.Task{Text: "keep me", Date: "18.10.2026"})
			require.NoError(t, err)

			h.say(t, "u", "delete task")
			reply := h.say(t, "u", tt.command)
			assert.Equal(t, tt.expected(h.pack.Replies), reply.Text)
			assert.True(t, reply.EndSession)
			assert.Equal(t, domain.StateIdle, h.state(t, "u"))
			assert.Len(t, h.tasks(t, "u"), 1)
		})
	}
}

func TestFallback(t *testing.T) {
	h := newHarness(t)

	reply := h.say(t, "u", "hello there")
	assert.Equal(t, "What would you like to do?", reply.Text)
	assert.False(t, reply.EndSession)
}

func TestStoreFailureApologises(t *testing.T) {
	h := newHarness(t)
	h.mr.Close()

	reply := h.say(t, "u", "show tasks")
	assert.Equal(t, h.pack.Replies.Failure, reply.Text)
	assert.True(t, reply.EndSession)
}

// brokenSession panics on any method it does not override.
type brokenSession struct {
	repository.UserSession
}

func (brokenSession) Key() string       { return "k" }
func (brokenSession) User() domain.User { return domain.User{ID: "u"} }

type failingSession struct {
	brokenSession
}

func (failingSession) Tasks(context.Context) ([]domain.Task, error) {
	return nil, errors.New("connection reset")
}

type fixedUsers struct {
	session repository.UserSession
}

func (f fixedUsers) Resolve(context.Context, string) (repository.UserSession, error) {
	return f.session, nil
}

type panicUsers struct{}

func (panicUsers) Resolve(context.Context, string) (repository.UserSession, error) {
	panic("boom")
}

func TestFailuresNeverEscape(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name  string
		users repository.Users
	}{
		{"rule error", fixedUsers{session: failingSession{}}},
		{"panic inside rule", fixedUsers{session: brokenSession{}}},
		{"panic in resolve", panicUsers{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := h.newEngine(tt.users)
			reply := e.Handle(context.Background(), "u", "show tasks")
			assert.Equal(t, h.pack.Replies.Failure, reply.Text)
			assert.True(t, reply.EndSession)
		})
	}
}

// slowUsers blocks until the turn deadline fires.
type slowUsers struct{}

func (slowUsers) Resolve(ctx context.Context, _ string) (repository.UserSession, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTurnDeadline(t *testing.T) {
	h := newHarness(t)
	e := h.newEngine(slowUsers{})
	e.timeout = 20 * time.Millisecond

	start := time.Now()
	reply := e.Handle(context.Background(), "u", "show tasks")

	assert.Equal(t, h.pack.Replies.Failure, reply.Text)
	assert.True(t, reply.EndSession)
	assert.Less(t, time.Since(start), time.Second)
}

// barrierUsers holds every Resolve until all expected callers have resolved.
type barrierUsers struct {
	inner repository.Users
	wg    *sync.WaitGroup
}

func (b barrierUsers) Resolve(ctx context.Context, userID string) (repository.UserSession, error) {
	s, err := b.inner.Resolve(ctx, userID)
	b.wg.Done()
	b.wg.Wait()
	return s, err
}

// Two simultaneous awaiting_task turns for one user both create a task.
// This is accepted; ids still stay unique.
func TestSameUserRaceCreatesTwoTasks(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session(t, "u").AwaitTask(context.Background(), "18.10.2026"))

	var barrier sync.WaitGroup
	barrier.Add(2)
	e := h.newEngine(barrierUsers{inner: h.store, wg: &barrier})

	var wg sync.WaitGroup
	for _, text := range []string{"call mom", "call dad"} {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			e.Handle(context.Background(), "u", text)
		}(text)
	}
	wg.Wait()

	tasks := h.tasks(t, "u")
	require.Len(t, tasks, 2)
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)
	assert.Equal(t, domain.StateIdle, h.state(t, "u"))
}

func TestConcurrentUsersAreIsolated(t *testing.T) {
	h := newHarness(t)

	const users = 20
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("user-%d", i)
			ctx := context.Background()
			h.engine.Handle(ctx, id, "create task")
			h.engine.Handle(ctx, id, fmt.Sprintf("%d.11", i%28+1))
			h.engine.Handle(ctx, id, fmt.Sprintf("chore %d", i))
		}(i)
	}
	wg.Wait()

	for i := 0; i < users; i++ {
		id := fmt.Sprintf("user-%d", i)
		assert.Equal(t, domain.StateIdle, h.state(t, id))

		tasks := h.tasks(t, id)
		require.Len(t, tasks, 1, id)
		assert.Equal(t, fmt.Sprintf("chore %d", i), tasks[0].Text)
		assert.True(t, strings.HasSuffix(tasks[0].Date, ".11.2026"), tasks[0].Date)
	}
}
