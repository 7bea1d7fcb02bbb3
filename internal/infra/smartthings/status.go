package smartthings

import (
	"github.com/tidwall/gjson"

	"smart-remote/internal/domain"
)

const switchValuePath = "components.main.switch.switch.value"

// ProjectStatus extracts the switch value from a status document. Anything
// other than a literal "on" counts as powered off; it never fails.
func ProjectStatus(raw []byte) domain.DeviceStatus {
	status := domain.DeviceStatus{Raw: raw}

	if !gjson.ValidBytes(raw) {
		return status
	}

	value := gjson.GetBytes(raw, switchValuePath)
	if value.Type == gjson.String {
		status.Switch = value.Str
	}
	status.PoweredOn = status.Switch == "on"

	return status
}
