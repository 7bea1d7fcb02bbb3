package domain

type DeviceKind string

const (
	DeviceKindPrimary   DeviceKind = "primary"
	DeviceKindAuxiliary DeviceKind = "auxiliary"
)

// DeviceRef addresses a device on the cloud API. ID is opaque and compared
// as an exact, case-sensitive string.
type DeviceRef struct {
	ID    string
	Name  string
	Label string
	Kind  DeviceKind
}

func (r DeviceRef) IsPrimary() bool {
	return r.Kind == DeviceKindPrimary
}

type DeviceDescriptor struct {
	DeviceID         string      `json:"deviceId"`
	Name             string      `json:"name"`
	Label            string      `json:"label"`
	ManufacturerName string      `json:"manufacturerName,omitempty"`
	LocationID       string      `json:"locationId,omitempty"`
	RoomID           string      `json:"roomId,omitempty"`
	Components       []Component `json:"components,omitempty"`
}

type Component struct {
	ID           string          `json:"id"`
	Label        string          `json:"label,omitempty"`
	Capabilities []CapabilityRef `json:"capabilities,omitempty"`
}

type CapabilityRef struct {
	ID      string `json:"id"`
	Version int    `json:"version,omitempty"`
}

// HasCapability reports whether the main component declares the capability.
func (d *DeviceDescriptor) HasCapability(capability string) bool {
	for _, c := range d.Components {
		if c.ID != MainComponent {
			continue
		}
		for _, ref := range c.Capabilities {
			if ref.ID == capability {
				return true
			}
		}
	}
	return false
}

// DeviceStatus is a full status snapshot. Only the switch value is
// interpreted; Raw keeps the document as returned by the server.
type DeviceStatus struct {
	Switch    string
	PoweredOn bool
	Raw       []byte
}
