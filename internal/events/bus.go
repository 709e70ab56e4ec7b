package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

type registration struct {
	id      uint64
	handler CommandHandler
}

// Bus is an in-memory Dispatcher. Handlers see commands in registration
// order and may dispatch further commands from inside HandleCommand.
type Bus struct {
	mu       sync.RWMutex
	handlers []registration
	nextID   uint64
	logger   *slog.Logger
}

// NewBus creates an empty command bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger: logger.With("component", "command_bus"),
	}
}

// RegisterHandler adds a handler and returns the function that removes it.
// The returned function is safe to call more than once.
func (b *Bus) RegisterHandler(handler CommandHandler) (unregister func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, registration{id: id, handler: handler})
	count := len(b.handlers)
	b.mu.Unlock()

	b.logger.Debug("registered command handler", "handler_count", count)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.handlers {
		if r.id == id {
			b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
			b.logger.Debug("unregistered command handler", "handler_count", len(b.handlers))
			return
		}
	}
}

// HandlerCount returns the number of registered handlers.
func (b *Bus) HandlerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Dispatch publishes the command to all registered handlers.
// If any handler returns an error, the command is still sent to the other
// handlers and the first error encountered is returned. ErrNoHandler is
// returned when no handler accepts the command type.
func (b *Bus) Dispatch(ctx context.Context, cmd *Command) error {
	b.mu.RLock()
	handlers := make([]registration, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	log := b.logger.With("command_id", cmd.ID, "command_type", cmd.Type)
	log.Debug("dispatching command", "handler_count", len(handlers))

	accepted := 0
	var firstErr error
	for i, r := range handlers {
		err := r.handler.HandleCommand(ctx, cmd)
		if errors.Is(err, ErrUnsupportedCommand) {
			continue
		}
		accepted++
		if err != nil {
			log.Debug("handler rejected command", "error", err, "handler_index", i)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if accepted == 0 {
		log.Warn("no handler accepted command")
		return ErrNoHandler
	}
	return firstErr
}
