// Package dialog drives the multi-turn conversation of the skill.
//
// A turn resolves the user's record, walks an ordered list of rules and
// runs the first one whose predicate matches. Global commands sit above the
// state-bound rules, so "exit" or "create task" interrupt any pending flow.
package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/voicelist/internal/domain"
	"github.com/MrSnakeDoc/voicelist/internal/locale"
	"github.com/MrSnakeDoc/voicelist/internal/logger"
	"github.com/MrSnakeDoc/voicelist/internal/nlu"
	"github.com/MrSnakeDoc/voicelist/internal/repository"
)

// Reply is what the assistant says back.
type Reply struct {
	Text       string
	EndSession bool
}

// Engine is safe for concurrent use. It holds no per-user state.
type Engine struct {
	users    repository.Users
	pack     *locale.Pack
	dates    *nlu.DateParser
	shopping *nlu.ShoppingExtractor
	log      logger.Logger
	timeout  time.Duration
	now      func() time.Time
	rules    []rule
}

// turn carries the inputs of one request through the rules.
type turn struct {
	ctx     context.Context
	session repository.UserSession
	text    string
	state   domain.State
}

// New builds an engine. A zero turnTimeout disables the per-turn deadline.
func New(
	users repository.Users,
	pack *locale.Pack,
	dates *nlu.DateParser,
	shopping *nlu.ShoppingExtractor,
	log logger.Logger,
	turnTimeout time.Duration,
) *Engine {
	return &Engine{
		users:    users,
		pack:     pack,
		dates:    dates,
		shopping: shopping,
		log:      log,
		timeout:  turnTimeout,
		now:      time.Now,
		rules:    defaultRules(),
	}
}

// Handle runs one turn. It never returns an error: failures and panics turn
// into the apology reply with the session ended.
func (e *Engine) Handle(ctx context.Context, userID, command string) (reply Reply) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	ruleName := "resolve"
	state := domain.StateIdle

	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("dialog turn panicked",
				logger.String("user_id", userID),
				logger.String("rule", ruleName),
				logger.String("state", string(state)),
				logger.String("panic", fmt.Sprint(rec)))
			reply = e.failure()
		}
	}()

	session, err := e.users.Resolve(ctx, userID)
	if err != nil {
		e.log.Error("failed to resolve user",
			logger.String("user_id", userID),
			logger.Error(err))
		return e.failure()
	}

	t := &turn{
		ctx:     ctx,
		session: session,
		text:    strings.ToLower(strings.TrimSpace(command)),
		state:   session.User().State,
	}
	state = t.state

	for _, r := range e.rules {
		if !r.match(e, t) {
			continue
		}
		ruleName = r.name

		reply, err := r.handle(e, t)
		if err != nil {
			e.log.Error("dialog rule failed",
				logger.String("user_id", userID),
				logger.String("rule", ruleName),
				logger.String("state", string(state)),
				logger.Error(err))
			return e.failure()
		}

		e.log.Debug("dialog turn",
			logger.String("user_id", userID),
			logger.String("rule", ruleName),
			logger.String("state", string(state)),
			logger.Bool("end_session", reply.EndSession))
		return reply
	}

	return Reply{Text: e.pack.Replies.Fallback}
}

// Failure is the apology reply used for any unexpected error.
func (e *Engine) Failure() Reply {
	return e.failure()
}

func (e *Engine) failure() Reply {
	return Reply{Text: e.pack.Replies.Failure, EndSession: true}
}
