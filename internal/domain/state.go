package domain

type Phase string

const (
	PhaseInitializing Phase = "initializing"
	PhaseReady        Phase = "ready"
	PhaseFailed       Phase = "failed"
)

// ControllerState is the read-only snapshot handed to presentation.
// Device is only set in PhaseReady and Error only in PhaseFailed.
type ControllerState struct {
	Phase        Phase             `json:"phase"`
	Loading      bool              `json:"loading"`
	Error        string            `json:"error,omitempty"`
	Device       *DeviceDescriptor `json:"device,omitempty"`
	PoweredOn    bool              `json:"poweredOn"`
	RemoteStatus string            `json:"remoteStatus"`
}
