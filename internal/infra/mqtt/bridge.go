package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"smart-remote/internal/domain"
)

// IntentRestart is accepted on the intent topic in addition to the remote
// intents and restarts the session.
const IntentRestart = "restart"

// Remote is the controller surface driven from the intent topic.
type Remote interface {
	Perform(ctx context.Context, intent domain.Intent, deviceName string) error
	Restart(ctx context.Context) error
}

type messenger interface {
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, handler MessageHandler) error
}

// IntentMessage is the payload accepted on the intent topic.
type IntentMessage struct {
	Intent string `json:"intent"`
	Device string `json:"device,omitempty"`
}

// Bridge mirrors controller state onto MQTT and feeds intents back in.
type Bridge struct {
	client messenger
	topics Topics
	logger *slog.Logger
	ctx    context.Context
	remote Remote
}

func NewBridge(client messenger, prefix string, logger *slog.Logger) *Bridge {
	return &Bridge{
		client: client,
		topics: Topics{Prefix: prefix},
		logger: logger,
	}
}

// Publish sends the snapshot as a retained message so late subscribers
// see the current state.
func (b *Bridge) Publish(_ context.Context, state domain.ControllerState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	if err := b.client.PublishRetained(b.topics.State(), payload); err != nil {
		return fmt.Errorf("publishing state: %w", err)
	}
	return nil
}

// Listen subscribes to the intent topic and forwards every message to
// remote. ctx is handed to the remote for each message.
func (b *Bridge) Listen(ctx context.Context, remote Remote) error {
	b.ctx = ctx
	b.remote = remote

	if err := b.client.Subscribe(b.topics.Intent(), b.handleIntent); err != nil {
		return fmt.Errorf("subscribing to %s: %w", b.topics.Intent(), err)
	}

	b.logger.Info("listening for MQTT intents", "topic", b.topics.Intent())
	return nil
}

// handleIntent runs on paho's router goroutine, which must not block, so
// the intent itself is performed on its own goroutine.
func (b *Bridge) handleIntent(_ string, payload []byte) error {
	msg, err := ParseIntentMessage(payload)
	if err != nil {
		return err
	}

	b.logger.Debug("MQTT intent received", "intent", msg.Intent, "device", msg.Device)

	go b.perform(msg)
	return nil
}

func (b *Bridge) perform(msg IntentMessage) {
	var err error
	if msg.Intent == IntentRestart {
		err = b.remote.Restart(b.ctx)
	} else {
		err = b.remote.Perform(b.ctx, domain.Intent(msg.Intent), msg.Device)
	}

	if err != nil {
		b.logger.Warn("MQTT intent failed", "intent", msg.Intent, "device", msg.Device, "error", err)
	}
}

// ParseIntentMessage accepts either a JSON IntentMessage or a bare intent
// name such as "power_on".
func ParseIntentMessage(payload []byte) (IntentMessage, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return IntentMessage{}, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}

	if !strings.HasPrefix(trimmed, "{") {
		return IntentMessage{Intent: trimmed}, nil
	}

	var msg IntentMessage
	if err := json.Unmarshal([]byte(trimmed), &msg); err != nil {
		return IntentMessage{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if msg.Intent == "" {
		return IntentMessage{}, fmt.Errorf("%w: missing intent", ErrInvalidPayload)
	}
	return msg, nil
}
