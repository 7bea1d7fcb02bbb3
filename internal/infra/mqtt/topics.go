package mqtt

import "strings"

// Topics builds the topic names under a configured prefix.
//
//	topics := mqtt.Topics{Prefix: "smart-remote"}
//	topics.State()  // "smart-remote/state"
type Topics struct {
	Prefix string
}

// State carries the retained controller snapshot.
func (t Topics) State() string {
	return t.join("state")
}

// Intent receives intents to perform.
func (t Topics) Intent() string {
	return t.join("intent")
}

// Status is the retained online/offline availability topic.
func (t Topics) Status() string {
	return t.join("status")
}

func (t Topics) join(leaf string) string {
	prefix := strings.TrimSuffix(t.Prefix, "/")
	if prefix == "" {
		return leaf
	}
	return prefix + "/" + leaf
}
