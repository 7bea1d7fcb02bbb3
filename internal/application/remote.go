package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"smart-remote/internal/domain"
)

var (
	ErrUnknownIntent    = errors.New("unknown intent")
	ErrUnknownDevice    = errors.New("unknown device")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionFailed    = errors.New("session failed")
)

const authRequiredMessage = "Authentication required. Please refresh the page."

const (
	DefaultReconcileDelay   = time.Second
	DefaultStatusClearDelay = 3 * time.Second
)

type RemoteOptions struct {
	TokenLifetime    time.Duration
	ReconcileDelay   time.Duration
	StatusClearDelay time.Duration
	Scheduler        Scheduler
	Now              func() time.Time
}

func (o *RemoteOptions) setDefaults() {
	if o.TokenLifetime <= 0 {
		o.TokenLifetime = domain.DefaultTokenLifetime
	}
	if o.ReconcileDelay <= 0 {
		o.ReconcileDelay = DefaultReconcileDelay
	}
	if o.StatusClearDelay <= 0 {
		o.StatusClearDelay = DefaultStatusClearDelay
	}
	if o.Scheduler == nil {
		o.Scheduler = DefaultScheduler
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// session is everything that lives for one authentication. A restart
// replaces it and bumps generation so late results from the previous
// session are dropped.
type session struct {
	generation   uint64
	credential   domain.Credential
	phase        domain.Phase
	failure      string
	device       *domain.DeviceDescriptor
	status       domain.DeviceStatus
	poweredOn    bool
	remoteStatus string
}

// Remote is the controller behind the remote-control surface: it owns the
// session, dispatches intents and reconciles the power flag.
type Remote struct {
	api       CloudAPI
	registry  DeviceRegistry
	publisher StatePublisher
	opts      RemoteOptions
	logger    *slog.Logger

	mu        sync.Mutex
	baseCtx   context.Context
	session   session
	reconcile Task
}

func NewRemote(
	api CloudAPI,
	registry DeviceRegistry,
	publisher StatePublisher,
	opts RemoteOptions,
	logger *slog.Logger,
) *Remote {
	opts.setDefaults()
	if publisher == nil {
		publisher = &NoopPublisher{}
	}

	return &Remote{
		api:       api,
		registry:  registry,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		session:   session{phase: domain.PhaseInitializing},
	}
}

// Start authenticates and loads the primary device. ctx also bounds the
// deferred reconciliation polls for the lifetime of the remote.
func (r *Remote) Start(ctx context.Context) error {
	r.mu.Lock()
	r.baseCtx = ctx
	r.mu.Unlock()

	return r.initialize(ctx)
}

// Restart discards the current session, including a failed one, and runs
// the startup sequence again.
func (r *Remote) Restart(ctx context.Context) error {
	r.logger.Info("restarting session")
	return r.initialize(ctx)
}

func (r *Remote) initialize(ctx context.Context) error {
	r.mu.Lock()
	if r.reconcile != nil {
		r.reconcile.Stop()
		r.reconcile = nil
	}
	gen := r.session.generation + 1
	r.session = session{generation: gen, phase: domain.PhaseInitializing}
	r.mu.Unlock()
	r.publish()

	r.logger.Info("acquiring credential")
	cred, err := r.api.AcquireToken(ctx, r.opts.TokenLifetime)
	if err != nil {
		r.fail(gen, "Failed to authenticate: "+err.Error())
		return fmt.Errorf("acquiring credential: %w", err)
	}

	if !r.update(gen, func(s *session) { s.credential = cred }) {
		return nil
	}

	primary := r.registry.Primary()
	r.logger.Info("fetching device", "device", primary.Name, "id", primary.ID)

	device, err := r.api.GetDevice(ctx, cred, primary.ID)
	if err != nil {
		r.fail(gen, err.Error())
		return fmt.Errorf("fetching device descriptor: %w", err)
	}

	if !r.update(gen, func(s *session) {
		s.phase = domain.PhaseReady
		s.device = device
	}) {
		return nil
	}
	r.publish()

	r.logger.Info("device loaded", "name", device.Name, "label", device.Label)

	r.refreshStatus(ctx, gen)

	return nil
}

// update applies fn if the session generation is still gen.
func (r *Remote) update(gen uint64, fn func(s *session)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.generation != gen {
		return false
	}
	fn(&r.session)
	return true
}

func (r *Remote) fail(gen uint64, reason string) {
	r.logger.Error("session failed", "reason", reason)

	if r.update(gen, func(s *session) {
		s.phase = domain.PhaseFailed
		s.failure = reason
		s.device = nil
	}) {
		r.publish()
	}
}

// State returns a snapshot for presentation.
func (r *Remote) State() domain.ControllerState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := domain.ControllerState{
		Phase:        r.session.phase,
		Loading:      r.session.phase == domain.PhaseInitializing,
		PoweredOn:    r.session.poweredOn,
		RemoteStatus: r.session.remoteStatus,
	}

	switch r.session.phase {
	case domain.PhaseReady:
		state.Device = r.session.device
	case domain.PhaseFailed:
		state.Error = r.session.failure
	}

	return state
}

func (r *Remote) Registry() DeviceRegistry {
	return r.registry
}

// RefreshStatus polls the primary device status. Failures are logged only.
func (r *Remote) RefreshStatus(ctx context.Context) {
	r.mu.Lock()
	gen := r.session.generation
	r.mu.Unlock()

	r.refreshStatus(ctx, gen)
}

func (r *Remote) refreshStatus(ctx context.Context, gen uint64) {
	r.mu.Lock()
	cred := r.session.credential
	current := r.session.generation == gen
	r.mu.Unlock()

	if !current || !cred.Valid(r.opts.Now()) {
		r.logger.Debug("skipping status poll, no valid credential")
		return
	}

	primary := r.registry.Primary()
	status, err := r.api.GetStatus(ctx, cred, primary.ID)
	if err != nil {
		r.logger.Warn("status poll failed", "device", primary.Name, "error", err)
		if errors.Is(err, domain.ErrUnauthorized) {
			r.invalidate(gen)
		}
		return
	}

	if r.update(gen, func(s *session) {
		s.status = status
		s.poweredOn = status.PoweredOn
	}) {
		r.logger.Debug("status refreshed", "switch", status.Switch)
		r.publish()
	}
}

func (r *Remote) invalidate(gen uint64) {
	r.logger.Warn("credential rejected, session restart required")
	r.update(gen, func(s *session) { s.credential.Invalidate() })
}

// Perform runs a named intent. Light intents need the logical name of the
// target device; other intents always address the primary device.
func (r *Remote) Perform(ctx context.Context, intent domain.Intent, deviceName string) error {
	switch intent {
	case domain.IntentLightOn, domain.IntentLightOff:
		ref, ok := r.registry.Lookup(deviceName)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownDevice, deviceName)
		}
		return r.switchLight(ctx, ref, intent == domain.IntentLightOn)
	}

	spec, ok := domain.RemoteIntent(intent)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIntent, intent)
	}
	return r.dispatch(ctx, r.registry.Primary(), spec)
}

func (r *Remote) PowerOn(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentPowerOn, "")
}

func (r *Remote) PowerOff(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentPowerOff, "")
}

func (r *Remote) VolumeUp(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentVolumeUp, "")
}

func (r *Remote) VolumeDown(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentVolumeDown, "")
}

func (r *Remote) Mute(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentMute, "")
}

func (r *Remote) Back(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentBack, "")
}

func (r *Remote) Home(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentHome, "")
}

func (r *Remote) ChannelUp(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentChannelUp, "")
}

func (r *Remote) ChannelDown(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentChannelDown, "")
}

func (r *Remote) NavigateUp(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentUp, "")
}

func (r *Remote) NavigateDown(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentDown, "")
}

func (r *Remote) NavigateLeft(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentLeft, "")
}

func (r *Remote) NavigateRight(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentRight, "")
}

func (r *Remote) Select(ctx context.Context) error {
	return r.Perform(ctx, domain.IntentOK, "")
}

func (r *Remote) TurnOnLight(ctx context.Context, ref domain.DeviceRef) error {
	return r.switchLight(ctx, ref, true)
}

func (r *Remote) TurnOffLight(ctx context.Context, ref domain.DeviceRef) error {
	return r.switchLight(ctx, ref, false)
}

// switchLight only addresses auxiliary devices; the primary is switched
// through the power intents so it gets reconciled.
func (r *Remote) switchLight(ctx context.Context, ref domain.DeviceRef, on bool) error {
	if ref.Kind != domain.DeviceKindAuxiliary {
		return fmt.Errorf("%w: %s is not a light", ErrUnknownDevice, ref.Name)
	}
	return r.dispatch(ctx, ref, domain.LightIntent(ref, on))
}

// dispatch sends one single-command envelope to target and reports the
// outcome through the transient remote status. A successful power intent on
// the primary device is applied optimistically and re-polled later.
func (r *Remote) dispatch(ctx context.Context, target domain.DeviceRef, spec domain.IntentSpec) error {
	r.mu.Lock()
	cred := r.session.credential
	gen := r.session.generation
	phase := r.session.phase

	if phase == domain.PhaseFailed {
		r.mu.Unlock()
		return ErrSessionFailed
	}

	if !cred.Valid(r.opts.Now()) {
		r.session.remoteStatus = authRequiredMessage
		r.mu.Unlock()
		r.publish()
		return ErrNotAuthenticated
	}

	r.session.remoteStatus = fmt.Sprintf("Sending %s...", spec.Label)
	r.mu.Unlock()
	r.publish()

	logger := r.logger.With(
		"command_id", uuid.NewString(),
		"device", target.Name,
		"capability", spec.Capability,
		"command", spec.Command,
	)

	env := domain.NewEnvelope(target, spec.Capability, spec.Command, spec.Arguments...)
	err := r.api.ExecuteCommands(ctx, cred, env)

	r.update(gen, func(s *session) {
		if err != nil {
			s.remoteStatus = fmt.Sprintf("Failed to send %s command", spec.Label)
			if errors.Is(err, domain.ErrUnauthorized) {
				s.credential.Invalidate()
			}
			return
		}

		s.remoteStatus = fmt.Sprintf("%s command sent successfully!", spec.Label)
		if spec.ChangesPower() && target.IsPrimary() {
			s.poweredOn = *spec.Power
			r.scheduleReconcileLocked(gen)
		}
	})

	r.opts.Scheduler.AfterFunc(r.opts.StatusClearDelay, r.clearRemoteStatus)
	r.publish()

	if err != nil {
		logger.Error("command failed", "error", err)
		return fmt.Errorf("sending %s: %w", spec.Label, err)
	}

	logger.Info("command sent")
	return nil
}

// scheduleReconcileLocked replaces any pending re-poll. Caller holds r.mu.
func (r *Remote) scheduleReconcileLocked(gen uint64) {
	if r.reconcile != nil {
		r.reconcile.Stop()
	}
	r.reconcile = r.opts.Scheduler.AfterFunc(r.opts.ReconcileDelay, func() {
		r.refreshStatus(r.deferredCtx(), gen)
	})
}

// clearRemoteStatus runs once per message; a newer message is cleared too.
func (r *Remote) clearRemoteStatus() {
	r.mu.Lock()
	r.session.remoteStatus = ""
	r.mu.Unlock()
	r.publish()
}

func (r *Remote) deferredCtx() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.baseCtx == nil {
		return context.Background()
	}
	return r.baseCtx
}

func (r *Remote) publish() {
	if err := r.publisher.Publish(r.deferredCtx(), r.State()); err != nil {
		r.logger.Warn("publishing state", "error", err)
	}
}
