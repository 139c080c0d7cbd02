package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/pixil98/go-gamesim/internal/commands"
	"github.com/pixil98/go-gamesim/internal/geo"
	"github.com/pixil98/go-gamesim/internal/sim"
)

const (
	DefaultPortRetries   = 10
	DefaultPortRetryWait = 5 * time.Second
)

// HTTPListener is the inbound command transport: the backend posts operator
// commands and reads engine state over it. It also carries the shutdown
// endpoint the backend uses to stop the engine.
type HTTPListener struct {
	port    uint16
	handler *commands.Handler
	state   *sim.State

	portRetries   int
	portRetryWait time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

func NewHTTPListener(port uint16, handler *commands.Handler, state *sim.State) *HTTPListener {
	return &HTTPListener{
		port:          port,
		handler:       handler,
		state:         state,
		portRetries:   DefaultPortRetries,
		portRetryWait: DefaultPortRetryWait,
		stop:          make(chan struct{}),
		now:           time.Now,
	}
}

func (l *HTTPListener) Start(ctx context.Context) error {
	ln, err := l.listen(ctx)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /command", l.handleCommand)
	mux.HandleFunc("POST /shutdown", l.handleShutdown)
	mux.HandleFunc("GET /status", l.handleStatus)

	svr := &http.Server{Handler: mux}

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
		case <-l.stop:
			slog.Info("shutdown requested by backend")
		case <-done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svr.Shutdown(shutdownCtx)
	}()

	slog.InfoContext(ctx, "listening for commands", "port", l.port)

	err = svr.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("serving http on port %d: %w", l.port, err)
}

// listen binds the command port, retrying while another engine instance
// still holds it. After the retry budget the failure is fatal to startup.
func (l *HTTPListener) listen(ctx context.Context) (net.Listener, error) {
	var lastErr error
	for attempt := 0; attempt <= l.portRetries; attempt++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
		if err == nil {
			return ln, nil
		}
		lastErr = err

		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("listening on port %d: %w", l.port, err)
		}

		slog.WarnContext(ctx, "port in use, retrying", "port", l.port, "wait", l.portRetryWait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.portRetryWait):
		}
	}

	return nil, fmt.Errorf("port %d is already in use (another engine running?): %w", l.port, lastErr)
}

type commandResponse struct {
	Status      string        `json:"status"`
	Message     string        `json:"message"`
	EntityState *entityStatus `json:"entity_state,omitempty"`
}

type entityStatus struct {
	EntityId           string        `json:"entity_id"`
	Name               string        `json:"name"`
	Location           geo.Location  `json:"location"`
	Target             *geo.Location `json:"target,omitempty"`
	IsMoving           bool          `json:"is_moving"`
	MovementType       string        `json:"movement_type,omitempty"`
	DistanceToTarget   *float64      `json:"distance_to_target,omitempty"`
	IsSleeping         bool          `json:"is_sleeping"`
	SleepTimeRemaining *float64      `json:"sleep_time_remaining,omitempty"`
}

func newEntityStatus(view *sim.EntityView) *entityStatus {
	st := &entityStatus{
		EntityId:     view.Id,
		Name:         view.Name,
		Location:     view.Location,
		Target:       view.Target,
		IsMoving:     view.Moving,
		MovementType: string(view.Kind),
		IsSleeping:   view.Sleeping,
	}
	if view.Moving {
		d := view.Distance
		st.DistanceToTarget = &d
	}
	if view.SleepRemaining != nil {
		s := view.SleepRemaining.Seconds()
		st.SleepTimeRemaining = &s
	}
	return st
}

func (l *HTTPListener) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd commands.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding command: %s", err))
		return
	}

	if err := l.handler.Handle(r.Context(), &cmd); err != nil {
		var userErr *commands.UserError
		switch {
		case errors.As(err, &userErr):
			writeError(w, http.StatusBadRequest, userErr.Message)
		case errors.Is(err, sim.ErrEntityNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	resp := &commandResponse{Status: "success", Message: "Command processed"}
	if view, err := l.handler.EntityView(cmd.EntityId); err == nil {
		resp.EntityState = newEntityStatus(view)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (l *HTTPListener) handleShutdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &commandResponse{
		Status:  "success",
		Message: "Shutdown initiated",
	})
	l.stopOnce.Do(func() { close(l.stop) })
}

type statusResponse struct {
	Entities    []*entityStatus `json:"entities"`
	LastCommand string          `json:"last_command,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
}

func (l *HTTPListener) handleStatus(w http.ResponseWriter, r *http.Request) {
	now := l.now()
	snap := l.state.Snapshot(now)

	resp := &statusResponse{}
	for i := range snap.Entities {
		resp.Entities = append(resp.Entities, newEntityStatus(&snap.Entities[i]))
	}
	if snap.LastCommand != nil {
		resp.LastCommand = snap.LastCommand.Text
	}
	if snap.LastError != nil {
		resp.LastError = snap.LastError.Text
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}
