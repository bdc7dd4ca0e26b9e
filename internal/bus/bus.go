// Package bus carries normalised Telegram updates from the channel to the
// dispatcher.
package bus

import (
	"log/slog"
	"sync"
	"time"

	"github.com/kawainime/TelegramGemini/internal/domain"
)

const defaultPublishTimeout = 10 * time.Second

// InMemoryBus is a Go-channel based bus for in-process delivery.
type InMemoryBus struct {
	inbound        chan domain.Update
	mu             sync.RWMutex
	closed         bool
	publishTimeout time.Duration
	logger         *slog.Logger
}

var _ domain.MessageBus = (*InMemoryBus)(nil)

// New creates an InMemoryBus with the given buffer size.
func New(bufferSize int, logger *slog.Logger) *InMemoryBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryBus{
		inbound:        make(chan domain.Update, bufferSize),
		publishTimeout: defaultPublishTimeout,
		logger:         logger,
	}
}

// Publish enqueues an update. When the buffer is full it waits up to the
// publish timeout, then drops the update.
func (b *InMemoryBus) Publish(upd domain.Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.Warn("attempted to publish to closed bus", "chat_id", upd.ChatID())
		return
	}

	select {
	case b.inbound <- upd:
		return
	default:
	}

	b.logger.Warn("inbound bus full, waiting", "chat_id", upd.ChatID())
	timer := time.NewTimer(b.publishTimeout)
	defer timer.Stop()
	select {
	case b.inbound <- upd:
	case <-timer.C:
		b.logger.Error("update dropped: bus full", "chat_id", upd.ChatID(), "waited", b.publishTimeout)
	}
}

func (b *InMemoryBus) Subscribe() <-chan domain.Update {
	return b.inbound
}

// Close stops delivery. Buffered updates remain readable.
func (b *InMemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.inbound)
	}
}
