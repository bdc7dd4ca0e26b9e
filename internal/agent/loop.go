// Package agent classifies inbound Telegram events into actions and
// dispatches them to the action handlers.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kawainime/TelegramGemini/internal/domain"
	"github.com/kawainime/TelegramGemini/internal/metrics"
)

const defaultConcurrency = 4

// Executor carries out routed actions.
type Executor interface {
	Execute(ctx context.Context, msg domain.InboundMessage, act domain.Action) error
	ExecuteCallback(ctx context.Context, cb domain.CallbackQuery, act domain.Action) error
}

// LoopConfig holds the dependencies of the dispatcher.
type LoopConfig struct {
	Bus         domain.MessageBus
	Executor    Executor
	Bot         domain.BotIdentity
	Logger      *slog.Logger
	Concurrency int // chats handled in parallel (default 4)
}

// Loop consumes updates from the bus. Updates for one chat are handled one at
// a time in arrival order; different chats proceed in parallel up to the
// concurrency limit.
type Loop struct {
	bus         domain.MessageBus
	exec        Executor
	bot         domain.BotIdentity
	logger      *slog.Logger
	concurrency int

	mu     sync.Mutex
	queues map[int64]*chatQueue
}

type chatQueue struct {
	pending []domain.Update
}

func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Loop{
		bus:         cfg.Bus,
		exec:        cfg.Executor,
		bot:         cfg.Bot,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
		queues:      make(map[int64]*chatQueue),
	}
}

// Run dispatches updates until ctx is cancelled or the bus is closed, then
// waits for in-flight handlers to finish.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("dispatcher started", "concurrency", l.concurrency)

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	inbound := l.bus.Subscribe()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("dispatcher stopping")
			return g.Wait()
		case upd, ok := <-inbound:
			if !ok {
				l.logger.Info("inbound channel closed, dispatcher stopping")
				return g.Wait()
			}
			l.dispatch(ctx, &g, upd)
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, g *errgroup.Group, upd domain.Update) {
	chatID := upd.ChatID()

	l.mu.Lock()
	if q, ok := l.queues[chatID]; ok {
		q.pending = append(q.pending, upd)
		l.mu.Unlock()
		return
	}
	q := &chatQueue{pending: []domain.Update{upd}}
	l.queues[chatID] = q
	l.mu.Unlock()

	g.Go(func() error {
		l.drain(ctx, chatID, q)
		return nil
	})
}

// drain handles a chat's queued updates until the queue is empty.
func (l *Loop) drain(ctx context.Context, chatID int64, q *chatQueue) {
	for {
		l.mu.Lock()
		if len(q.pending) == 0 || ctx.Err() != nil {
			if n := len(q.pending); n > 0 {
				l.logger.Warn("dropping queued updates on shutdown", "chat_id", chatID, "count", n)
			}
			delete(l.queues, chatID)
			l.mu.Unlock()
			return
		}
		upd := q.pending[0]
		q.pending = q.pending[1:]
		l.mu.Unlock()

		l.handle(ctx, upd)
	}
}

// handle processes one update. Errors and panics are logged and never stop
// the dispatcher.
func (l *Loop) handle(ctx context.Context, upd domain.Update) {
	logger := l.logger.With("update_id", uuid.NewString(), "chat_id", upd.ChatID())
	ctx = domain.WithLogger(ctx, logger)

	metrics.UpdatesTotal.Inc()
	metrics.InFlight.Inc()
	defer metrics.InFlight.Dec()

	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerPanics.Inc()
			logger.Error("update handler panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()

	switch {
	case upd.Message != nil:
		msg := *upd.Message
		act, ruleName := classify(msg, l.bot)
		metrics.Action(act.Kind()).Inc()
		logger.Debug("message classified", "user_id", msg.SenderID, "rule", ruleName, "action", act.Kind())
		if _, ok := act.(domain.NoAction); ok {
			return
		}
		if err := l.exec.Execute(ctx, msg, act); err != nil {
			logger.Error("action failed", "action", act.Kind(), "user_id", msg.SenderID, "err", err)
		}

	case upd.Callback != nil:
		cb := *upd.Callback
		act := ClassifyCallback(cb)
		metrics.Action(act.Kind()).Inc()
		logger.Debug("callback classified", "user_id", cb.SenderID, "data", cb.Data, "action", act.Kind())
		if err := l.exec.ExecuteCallback(ctx, cb, act); err != nil {
			logger.Error("callback failed", "action", act.Kind(), "user_id", cb.SenderID, "err", err)
		}
	}
}
