package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Command types understood by the domain handlers.
const (
	CommandNobleCreate            = "noble.create"
	CommandNobleAddResources      = "noble.add_resources"
	CommandNobleRemoveResources   = "noble.remove_resources"
	CommandNobleUnlockAchievement = "noble.unlock_achievement"
	CommandNobleApplyEffect       = "noble.apply_effect"
	CommandNobleCollectYield      = "noble.collect_yield"
	CommandTerritoryAcquire       = "territory.acquire"
	CommandTerritoryUpgrade       = "territory.upgrade"
	CommandTerritoryCollect       = "territory.collect"
)

var (
	// ErrNoHandler is returned by Dispatch when no registered handler accepts the command.
	ErrNoHandler = errors.New("no handler registered for command")

	// ErrUnsupportedCommand is returned by a handler for command types it does not process.
	ErrUnsupportedCommand = errors.New("unsupported command type")
)

// Command represents a request to change domain state.
type Command struct {
	// ID is a unique identifier for this command
	ID uuid.UUID `json:"id"`

	// Type selects the handler behaviour
	Type string `json:"type"`

	// Payload contains the command-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the command was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the command payload into the provided structure.
func (c *Command) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(c.Payload, v)
}

// NewCommand creates a new Command with the specified type and payload.
func NewCommand(commandType string, payload interface{}) (*Command, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Command{
		ID:        uuid.New(),
		Type:      commandType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CommandHandler defines an interface for components that act on commands.
type CommandHandler interface {
	// HandleCommand processes the command. Handlers return
	// ErrUnsupportedCommand for types they do not process.
	HandleCommand(ctx context.Context, cmd *Command) error
}

// HandlerFunc adapts a function to the CommandHandler interface.
type HandlerFunc func(ctx context.Context, cmd *Command) error

// HandleCommand implements CommandHandler.
func (f HandlerFunc) HandleCommand(ctx context.Context, cmd *Command) error {
	return f(ctx, cmd)
}

// Dispatcher defines an interface for components that send commands.
// Services and handlers depend on this rather than on Bus directly.
type Dispatcher interface {
	// Dispatch delivers the command to every registered handler.
	Dispatch(ctx context.Context, cmd *Command) error
}
