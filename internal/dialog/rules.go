package dialog

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/voicelist/internal/domain"
	"github.com/MrSnakeDoc/voicelist/internal/locale"
	"github.com/MrSnakeDoc/voicelist/internal/logger"
	"github.com/MrSnakeDoc/voicelist/internal/nlu"
)

// rule pairs a predicate with its handler. Rules are tried in order.
type rule struct {
	name   string
	match  func(e *Engine, t *turn) bool
	handle func(e *Engine, t *turn) (Reply, error)
}

func defaultRules() []rule {
	return []rule{
		{"exit", keyword(func(k locale.Keywords) []string { return k.Exit }), (*Engine).exit},
		{"help", keyword(func(k locale.Keywords) []string { return k.Help }), (*Engine).help},
		{"profile", keyword(func(k locale.Keywords) []string { return k.Profile }), (*Engine).profile},
		{"create", keyword(func(k locale.Keywords) []string { return k.CreateTask }), (*Engine).create},
		{"date", inState(domain.StateAwaitingDate), (*Engine).date},
		{"task", inState(domain.StateAwaitingTask), (*Engine).task},
		{"list", keyword(func(k locale.Keywords) []string { return k.ListTasks }), (*Engine).list},
		{"delete", keyword(func(k locale.Keywords) []string { return k.DeleteTask }), (*Engine).askDeletion},
		{"select", inState(domain.StateAwaitingTaskDeletion), (*Engine).selectTask},
		{"fallback", always, (*Engine).fallback},
	}
}

func keyword(pick func(locale.Keywords) []string) func(*Engine, *turn) bool {
	return func(e *Engine, t *turn) bool {
		return locale.ContainsAny(t.text, pick(e.pack.Keywords))
	}
}

func inState(s domain.State) func(*Engine, *turn) bool {
	return func(_ *Engine, t *turn) bool {
		return t.state == s
	}
}

func always(*Engine, *turn) bool { return true }

// ─────────────────────────────
// Global commands
// ─────────────────────────────

func (e *Engine) exit(t *turn) (Reply, error) {
	if err := t.session.SetState(t.ctx, domain.StateIdle); err != nil {
		return Reply{}, err
	}
	return Reply{Text: e.pack.Replies.Goodbye, EndSession: true}, nil
}

func (e *Engine) help(*turn) (Reply, error) {
	return Reply{Text: e.pack.Replies.Help}, nil
}

func (e *Engine) profile(t *turn) (Reply, error) {
	text := locale.Fill(e.pack.Replies.Profile,
		"key", t.session.Key(),
		"id", t.session.User().ID)
	return Reply{Text: text}, nil
}

func (e *Engine) create(t *turn) (Reply, error) {
	if err := t.session.SetState(t.ctx, domain.StateAwaitingDate); err != nil {
		return Reply{}, err
	}
	return Reply{Text: e.pack.Replies.AskDate}, nil
}

// ─────────────────────────────
// Task creation flow
// ─────────────────────────────

func (e *Engine) date(t *turn) (Reply, error) {
	date, ok := e.dates.Parse(t.text)
	if !ok {
		e.log.Debug("date not understood", logger.String("utterance", t.text))
		return Reply{Text: e.pack.Replies.DateNotUnderstood}, nil
	}
	if err := t.session.AwaitTask(t.ctx, date); err != nil {
		return Reply{}, err
	}
	return Reply{Text: locale.Fill(e.pack.Replies.DateAccepted, "date", date)}, nil
}

func (e *Engine) task(t *turn) (Reply, error) {
	if t.text == "" {
		return Reply{Text: e.pack.Replies.TaskEmpty}, nil
	}

	date := t.session.User().CurrentDate
	if date == "" {
		date = e.now().Format(nlu.DateLayout)
	}

	task := domain.Task{
		Text:       t.text,
		Date:       date,
		Importance: domain.DefaultImportance,
	}
	items := e.shopping.Extract(t.text)
	if items != nil {
		task.IsShopping = true
		task.ShoppingList = items
	}

	if _, err := t.session.AddTask(t.ctx, task); err != nil {
		return Reply{}, err
	}
	if err := t.session.SetState(t.ctx, domain.StateIdle); err != nil {
		return Reply{}, err
	}

	if task.IsShopping {
		names := make([]string, 0, len(items))
		for _, it := range items {
			names = append(names, it.ShortName)
		}
		text := locale.Fill(e.pack.Replies.ShoppingCreated,
			"date", date,
			"items", strings.Join(names, ", "))
		return Reply{Text: text, EndSession: true}, nil
	}

	text := locale.Fill(e.pack.Replies.TaskCreated, "text", t.text, "date", date)
	return Reply{Text: text, EndSession: true}, nil
}

// ─────────────────────────────
// Listing and deletion
// ─────────────────────────────

func (e *Engine) list(t *turn) (Reply, error) {
	tasks, err := t.session.Tasks(t.ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: FormatTasks(e.pack.Replies, tasks), EndSession: true}, nil
}

func (e *Engine) askDeletion(t *turn) (Reply, error) {
	tasks, err := t.session.Tasks(t.ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(tasks) == 0 {
		return Reply{Text: e.pack.Replies.NothingToDelete}, nil
	}
	if err := t.session.SetState(t.ctx, domain.StateAwaitingTaskDeletion); err != nil {
		return Reply{}, err
	}
	text := FormatForDeletion(e.pack.Replies, tasks) + "\n\n" + e.pack.Replies.AskDeletion
	return Reply{Text: text}, nil
}

var numberPattern = regexp.MustCompile(`\d+`)

// selectTask deletes the task at the spoken 1-based position. The flow ends
// whatever the outcome.
func (e *Engine) selectTask(t *turn) (Reply, error) {
	if err := t.session.SetState(t.ctx, domain.StateIdle); err != nil {
		return Reply{}, err
	}

	n, err := strconv.Atoi(numberPattern.FindString(t.text))
	if err != nil {
		e.log.Debug("deletion selection not understood", logger.String("utterance", t.text))
		return Reply{Text: e.pack.Replies.DeletionNotUnderstood, EndSession: true}, nil
	}

	tasks, err := t.session.Tasks(t.ctx)
	if err != nil {
		return Reply{}, err
	}
	if n < 1 || n > len(tasks) {
		e.log.Debug("deletion selection out of range",
			logger.Int("selected", n),
			logger.Int("tasks", len(tasks)))
		return Reply{Text: e.pack.Replies.NoSuchTask, EndSession: true}, nil
	}

	target := tasks[n-1]
	if err := t.session.DeleteTask(t.ctx, target.ID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return Reply{Text: e.pack.Replies.NoSuchTask, EndSession: true}, nil
		}
		return Reply{}, err
	}
	return Reply{Text: locale.Fill(e.pack.Replies.TaskDeleted, "text", target.Text), EndSession: true}, nil
}

func (e *Engine) fallback(*turn) (Reply, error) {
	return Reply{Text: e.pack.Replies.Fallback}, nil
}
