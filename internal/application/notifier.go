package application

import (
	"context"

	"smart-remote/internal/domain"
)

// StatePublisher receives a snapshot after every state change.
type StatePublisher interface {
	Publish(ctx context.Context, state domain.ControllerState) error
}

type NoopPublisher struct{}

func (n *NoopPublisher) Publish(_ context.Context, _ domain.ControllerState) error {
	return nil
}
