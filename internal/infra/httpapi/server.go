package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"smart-remote/internal/application"
	"smart-remote/internal/domain"
)

// Remote is the controller surface exposed over HTTP.
type Remote interface {
	State() domain.ControllerState
	Perform(ctx context.Context, intent domain.Intent, deviceName string) error
	Restart(ctx context.Context) error
	RefreshStatus(ctx context.Context)
	Registry() application.DeviceRegistry
}

// Options tunes the server. RateLimit is requests per minute per client on
// the command endpoints; zero or less disables limiting. TrustProxy keys
// the limiter on X-Forwarded-For/X-Real-IP instead of the peer address.
type Options struct {
	AuthToken  string
	RateLimit  int
	TrustProxy bool
}

type Server struct {
	addr        string
	authToken   string
	remote      Remote
	share       application.ShareLink
	logger      *slog.Logger
	router      *mux.Router
	rateLimiter *RateLimiter

	mu      sync.Mutex
	server  *http.Server
	running bool
}

func NewServer(addr string, opts Options, remote Remote, share application.ShareLink, logger *slog.Logger) *Server {
	s := &Server{
		addr:      addr,
		authToken: opts.AuthToken,
		remote:    remote,
		share:     share,
		logger:    logger,
		router:    mux.NewRouter(),
	}

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.NewRoute().Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/devices", s.handleDevices).Methods(http.MethodGet)
	api.HandleFunc("/share", s.handleShare).Methods(http.MethodGet)

	commands := api.NewRoute().Subrouter()
	if opts.RateLimit > 0 {
		s.rateLimiter = NewRateLimiter(opts.RateLimit, time.Minute)
		s.rateLimiter.TrustProxy = opts.TrustProxy
		commands.Use(s.rateLimiter.Middleware)
	}
	commands.HandleFunc("/intents/{intent}", s.handleIntent).Methods(http.MethodPost)
	commands.HandleFunc("/lights/{name}/{action:on|off}", s.handleLight).Methods(http.MethodPost)
	commands.HandleFunc("/session/restart", s.handleRestart).Methods(http.MethodPost)
	commands.HandleFunc("/status/refresh", s.handleRefresh).Methods(http.MethodPost)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Info("HTTP server starting", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}

	s.running = false
	return nil
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		if token != s.authToken {
			s.logger.Warn("unauthorized request", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	state := s.remote.State()

	statusCode := http.StatusOK
	status := "ok"
	if state.Phase == domain.PhaseFailed {
		statusCode = http.StatusServiceUnavailable
		status = "failed"
	}

	writeJSON(w, statusCode, map[string]any{
		"status": status,
		"phase":  state.Phase,
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.remote.State())
}

type deviceView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	ID    string `json:"id"`
}

func (s *Server) handleDevices(w http.ResponseWriter, _ *http.Request) {
	registry := s.remote.Registry()
	primary := registry.Primary()

	aux := registry.Auxiliary()
	lights := make([]deviceView, 0, len(aux))
	for _, ref := range aux {
		lights = append(lights, deviceView{Name: ref.Name, Label: ref.Label, ID: ref.ID})
	}

	intents := domain.RemoteIntents()

	// supported is only known once the descriptor is loaded.
	supported := []domain.Intent{}
	if device := s.remote.State().Device; device != nil {
		for _, intent := range intents {
			spec, _ := domain.RemoteIntent(intent)
			if device.HasCapability(spec.Capability) {
				supported = append(supported, intent)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"primary":   deviceView{Name: primary.Name, Label: primary.Label, ID: primary.ID},
		"auxiliary": lights,
		"intents":   intents,
		"supported": supported,
	})
}

func (s *Server) handleShare(w http.ResponseWriter, _ *http.Request) {
	if s.share.URL == "" {
		writeError(w, http.StatusNotFound, "sharing not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.share)
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	intent := domain.Intent(mux.Vars(r)["intent"])
	s.perform(w, r, intent, "")
}

func (s *Server) handleLight(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	intent := domain.IntentLightOff
	if vars["action"] == "on" {
		intent = domain.IntentLightOn
	}

	s.perform(w, r, intent, vars["name"])
}

// perform detaches from the request context: a command that has been
// issued is never aborted.
func (s *Server) perform(w http.ResponseWriter, r *http.Request, intent domain.Intent, device string) {
	err := s.remote.Perform(context.WithoutCancel(r.Context()), intent, device)
	writeJSON(w, statusFor(err), s.remote.State())
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	err := s.remote.Restart(context.WithoutCancel(r.Context()))
	if err != nil {
		s.logger.Warn("session restart failed", "error", err)
	}
	writeJSON(w, statusFor(err), s.remote.State())
}

// handleRefresh polls the primary device now; poll failures are only
// logged, so the response is always the current snapshot.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.remote.RefreshStatus(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusOK, s.remote.State())
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, application.ErrUnknownIntent), errors.Is(err, application.ErrUnknownDevice):
		return http.StatusNotFound
	case errors.Is(err, application.ErrNotAuthenticated), errors.Is(err, application.ErrSessionFailed):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
