package domain

const MainComponent = "main"

const (
	CapabilitySwitch        = "switch"
	CapabilityAudioVolume   = "audioVolume"
	CapabilityAudioMute     = "audioMute"
	CapabilityTVChannel     = "tvChannel"
	CapabilityRemoteControl = "samsungvd.remoteControl"
)

// PressAndRelease is the key action argument for remote-control key presses.
const PressAndRelease = "PRESS_AND_RELEASED"

type Command struct {
	Component  string `json:"component"`
	Capability string `json:"capability"`
	Command    string `json:"command"`
	Arguments  []any  `json:"arguments,omitempty"`
}

// CommandEnvelope targets exactly one device. The server executes Commands
// in order.
type CommandEnvelope struct {
	Target   DeviceRef `json:"-"`
	Commands []Command `json:"commands"`
}

// NewEnvelope wraps a single command on the main component.
func NewEnvelope(target DeviceRef, capability, command string, args ...any) CommandEnvelope {
	return CommandEnvelope{
		Target: target,
		Commands: []Command{{
			Component:  MainComponent,
			Capability: capability,
			Command:    command,
			Arguments:  args,
		}},
	}
}
