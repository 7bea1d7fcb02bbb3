package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-remote/internal/domain"
)

type fakeMessenger struct {
	published map[string][]byte
	handlers  map[string]MessageHandler
	err       error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		published: make(map[string][]byte),
		handlers:  make(map[string]MessageHandler),
	}
}

func (f *fakeMessenger) PublishRetained(topic string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published[topic] = payload
	return nil
}

func (f *fakeMessenger) Subscribe(topic string, handler MessageHandler) error {
	if f.err != nil {
		return f.err
	}
	f.handlers[topic] = handler
	return nil
}

type performed struct {
	intent domain.Intent
	device string
}

type fakeRemote struct {
	mu        sync.Mutex
	performed []performed
	restarts  int
	err       error
	release   chan struct{}
}

func (f *fakeRemote) Perform(_ context.Context, intent domain.Intent, deviceName string) error {
	if f.release != nil {
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.performed = append(f.performed, performed{intent: intent, device: deviceName})
	return f.err
}

func (f *fakeRemote) Restart(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts++
	return f.err
}

func (f *fakeRemote) snapshot() ([]performed, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]performed(nil), f.performed...), f.restarts
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTopics(t *testing.T) {
	topics := Topics{Prefix: "home/remote/"}
	assert.Equal(t, "home/remote/state", topics.State())
	assert.Equal(t, "home/remote/intent", topics.Intent())
	assert.Equal(t, "home/remote/status", topics.Status())

	assert.Equal(t, "state", Topics{}.State())
}

func TestBridge_Publish(t *testing.T) {
	client := newFakeMessenger()
	bridge := NewBridge(client, "smart-remote", discardLogger())

	state := domain.ControllerState{
		Phase:        domain.PhaseReady,
		PoweredOn:    true,
		RemoteStatus: "Sending Power On...",
	}
	require.NoError(t, bridge.Publish(context.Background(), state))

	payload, ok := client.published["smart-remote/state"]
	require.True(t, ok)

	var got domain.ControllerState
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, state, got)
}

func TestBridge_PublishError(t *testing.T) {
	client := newFakeMessenger()
	client.err = ErrNotConnected
	bridge := NewBridge(client, "smart-remote", discardLogger())

	err := bridge.Publish(context.Background(), domain.ControllerState{})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestBridge_Listen(t *testing.T) {
	client := newFakeMessenger()
	remote := &fakeRemote{}
	bridge := NewBridge(client, "smart-remote", discardLogger())

	require.NoError(t, bridge.Listen(context.Background(), remote))

	handler, ok := client.handlers["smart-remote/intent"]
	require.True(t, ok)

	require.NoError(t, handler("smart-remote/intent", []byte(`{"intent":"light_on","device":"ceilingLight1"}`)))
	require.NoError(t, handler("smart-remote/intent", []byte(`{"intent":"restart"}`)))

	assert.Eventually(t, func() bool {
		got, restarts := remote.snapshot()
		return len(got) == 1 && restarts == 1
	}, time.Second, 5*time.Millisecond)

	got, _ := remote.snapshot()
	assert.Equal(t, performed{intent: domain.IntentLightOn, device: "ceilingLight1"}, got[0])
}

func TestBridge_HandlerDoesNotBlockOnRemote(t *testing.T) {
	client := newFakeMessenger()
	remote := &fakeRemote{release: make(chan struct{})}
	bridge := NewBridge(client, "smart-remote", discardLogger())
	require.NoError(t, bridge.Listen(context.Background(), remote))

	handler := client.handlers["smart-remote/intent"]

	done := make(chan error, 1)
	go func() {
		done <- handler("smart-remote/intent", []byte("volume_up\n"))
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("handler blocked on the remote")
	}

	close(remote.release)
	assert.Eventually(t, func() bool {
		got, _ := remote.snapshot()
		return len(got) == 1 && got[0].intent == domain.IntentVolumeUp
	}, time.Second, 5*time.Millisecond)
}

func TestBridge_HandlerRejectsInvalidPayload(t *testing.T) {
	client := newFakeMessenger()
	remote := &fakeRemote{err: errors.New("unknown intent")}
	bridge := NewBridge(client, "smart-remote", discardLogger())
	require.NoError(t, bridge.Listen(context.Background(), remote))

	handler := client.handlers["smart-remote/intent"]

	assert.ErrorIs(t, handler("smart-remote/intent", []byte(`{"device":"tv"}`)), ErrInvalidPayload)
	assert.NoError(t, handler("smart-remote/intent", []byte("rewind")))
}

func TestParseIntentMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    IntentMessage
		wantErr bool
	}{
		{name: "json", payload: `{"intent":"power_off"}`, want: IntentMessage{Intent: "power_off"}},
		{name: "json with device", payload: ` {"intent":"light_off","device":"stripLight6"} `, want: IntentMessage{Intent: "light_off", Device: "stripLight6"}},
		{name: "bare", payload: "mute", want: IntentMessage{Intent: "mute"}},
		{name: "empty", payload: "  ", wantErr: true},
		{name: "malformed", payload: `{"intent":`, wantErr: true},
		{name: "missing intent", payload: `{"device":"stripLight1"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIntentMessage([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusPayload(t *testing.T) {
	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(statusPayload("offline", "smart-remote-1", "graceful_shutdown")), &body))

	assert.Equal(t, "offline", body["status"])
	assert.Equal(t, "smart-remote-1", body["client_id"])
	assert.Equal(t, "graceful_shutdown", body["reason"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestConfig_ClientID(t *testing.T) {
	assert.Equal(t, "tv-remote", Config{ClientID: "tv-remote"}.clientID())
	assert.Regexp(t, `^smart-remote-[0-9a-f-]{36}$`, Config{}.clientID())
}
