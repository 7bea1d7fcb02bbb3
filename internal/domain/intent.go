package domain

type Intent string

const (
	IntentPowerOn     Intent = "power_on"
	IntentPowerOff    Intent = "power_off"
	IntentVolumeUp    Intent = "volume_up"
	IntentVolumeDown  Intent = "volume_down"
	IntentMute        Intent = "mute"
	IntentBack        Intent = "back"
	IntentHome        Intent = "home"
	IntentChannelUp   Intent = "channel_up"
	IntentChannelDown Intent = "channel_down"
	IntentUp          Intent = "up"
	IntentDown        Intent = "down"
	IntentLeft        Intent = "left"
	IntentRight       Intent = "right"
	IntentOK          Intent = "ok"
	IntentLightOn     Intent = "light_on"
	IntentLightOff    Intent = "light_off"
)

// IntentSpec maps a user intent onto one capability command. Power intents
// carry the switch value they drive the primary device to.
type IntentSpec struct {
	Intent     Intent
	Label      string
	Capability string
	Command    string
	Arguments  []any
	Power      *bool
}

func (s IntentSpec) ChangesPower() bool {
	return s.Power != nil
}

var (
	on  = true
	off = false
)

func keyPress(intent Intent, label, key string) IntentSpec {
	return IntentSpec{
		Intent:     intent,
		Label:      label,
		Capability: CapabilityRemoteControl,
		Command:    "send",
		Arguments:  []any{key, PressAndRelease},
	}
}

var remoteIntents = map[Intent]IntentSpec{
	IntentPowerOn:     {Intent: IntentPowerOn, Label: "Power On", Capability: CapabilitySwitch, Command: "on", Power: &on},
	IntentPowerOff:    {Intent: IntentPowerOff, Label: "Power Off", Capability: CapabilitySwitch, Command: "off", Power: &off},
	IntentVolumeUp:    {Intent: IntentVolumeUp, Label: "Volume Up", Capability: CapabilityAudioVolume, Command: "volumeUp"},
	IntentVolumeDown:  {Intent: IntentVolumeDown, Label: "Volume Down", Capability: CapabilityAudioVolume, Command: "volumeDown"},
	IntentMute:        {Intent: IntentMute, Label: "Mute", Capability: CapabilityAudioMute, Command: "mute"},
	IntentChannelUp:   {Intent: IntentChannelUp, Label: "Channel Up", Capability: CapabilityTVChannel, Command: "channelUp"},
	IntentChannelDown: {Intent: IntentChannelDown, Label: "Channel Down", Capability: CapabilityTVChannel, Command: "channelDown"},
	IntentBack:        keyPress(IntentBack, "Back", "BACK"),
	IntentHome:        keyPress(IntentHome, "Home", "HOME"),
	IntentUp:          keyPress(IntentUp, "Up", "UP"),
	IntentDown:        keyPress(IntentDown, "Down", "DOWN"),
	IntentLeft:        keyPress(IntentLeft, "Left", "LEFT"),
	IntentRight:       keyPress(IntentRight, "Right", "RIGHT"),
	IntentOK:          keyPress(IntentOK, "OK/Select", "OK"),
}

// RemoteIntent returns the primary-device command for intent. Light
// intents are not in this table; see LightIntent.
func RemoteIntent(intent Intent) (IntentSpec, bool) {
	spec, ok := remoteIntents[intent]
	return spec, ok
}

func RemoteIntents() []Intent {
	return []Intent{
		IntentPowerOn, IntentPowerOff,
		IntentVolumeUp, IntentVolumeDown, IntentMute,
		IntentBack, IntentHome,
		IntentChannelUp, IntentChannelDown,
		IntentUp, IntentDown, IntentLeft, IntentRight, IntentOK,
	}
}

// LightIntent builds the switch command for an auxiliary device. It never
// carries a power value: reconciliation only tracks the primary device.
func LightIntent(ref DeviceRef, turnOn bool) IntentSpec {
	if turnOn {
		return IntentSpec{Intent: IntentLightOn, Label: ref.Label + " On", Capability: CapabilitySwitch, Command: "on"}
	}
	return IntentSpec{Intent: IntentLightOff, Label: ref.Label + " Off", Capability: CapabilitySwitch, Command: "off"}
}
