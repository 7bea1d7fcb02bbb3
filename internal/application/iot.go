package application

import (
	"context"
	"time"

	"smart-remote/internal/domain"
)

type Authenticator interface {
	AcquireToken(ctx context.Context, lifetime time.Duration) (domain.Credential, error)
}

type DeviceReader interface {
	GetDevice(ctx context.Context, cred domain.Credential, deviceID string) (*domain.DeviceDescriptor, error)
	GetStatus(ctx context.Context, cred domain.Credential, deviceID string) (domain.DeviceStatus, error)
}

type CommandSender interface {
	ExecuteCommands(ctx context.Context, cred domain.Credential, env domain.CommandEnvelope) error
}

// CloudAPI is everything the remote needs from the device cloud.
type CloudAPI interface {
	Authenticator
	DeviceReader
	CommandSender
}

type DeviceRegistry interface {
	Primary() domain.DeviceRef
	Auxiliary() []domain.DeviceRef
	Lookup(name string) (domain.DeviceRef, bool)
}
