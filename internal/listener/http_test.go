package listener

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-gamesim/internal/commands"
	"github.com/pixil98/go-gamesim/internal/sim"
	"github.com/pixil98/go-gamesim/internal/world"
	"github.com/pixil98/go-testutil"
)

var testStart = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestListener() (*HTTPListener, *sim.State) {
	state := sim.NewState(world.DefaultArea(), testStart)
	handler := commands.NewHandler(state)
	l := NewHTTPListener(8001, handler, state)
	l.now = func() time.Time { return testStart }
	return l, state
}

func postCommand(t *testing.T, l *HTTPListener, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(body))
	rec := httptest.NewRecorder()
	l.handleCommand(rec, req)
	return rec
}

func TestHandleCommandSuccess(t *testing.T) {
	l, state := newTestListener()

	rec := postCommand(t, l, `{"command":"walk","entity_id":"person_001","destination":{"x":10,"y":0,"z":0}}`)

	testutil.AssertEqual(t, "status code", rec.Code, http.StatusOK)

	var resp struct {
		Status      string `json:"status"`
		Message     string `json:"message"`
		EntityState *struct {
			IsMoving     bool   `json:"is_moving"`
			MovementType string `json:"movement_type"`
		} `json:"entity_state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	testutil.AssertEqual(t, "status", resp.Status, "success")
	testutil.AssertEqual(t, "message", resp.Message, "Command processed")
	if resp.EntityState == nil {
		t.Fatal("expected entity state echo")
	}
	testutil.AssertEqual(t, "is moving", resp.EntityState.IsMoving, true)
	testutil.AssertEqual(t, "movement type", resp.EntityState.MovementType, "walk")

	_ = state.WithEntity("person_001", func(e *sim.EntityState) error {
		testutil.AssertEqual(t, "entity moving", e.Moving(), true)
		return nil
	})
}

func TestHandleCommandErrors(t *testing.T) {
	tests := map[string]struct {
		body      string
		expCode   int
		expDetail string
	}{
		"malformed json": {
			body:    `{"command":`,
			expCode: http.StatusBadRequest,
		},
		"missing destination": {
			body:      `{"command":"run","entity_id":"person_001"}`,
			expCode:   http.StatusBadRequest,
			expDetail: "run command requires destination",
		},
		"unknown command": {
			body:      `{"command":"fly","entity_id":"person_001"}`,
			expCode:   http.StatusBadRequest,
			expDetail: "unknown command: fly",
		},
		"unknown entity": {
			body:    `{"command":"wake","entity_id":"person_999"}`,
			expCode: http.StatusNotFound,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l, _ := newTestListener()

			rec := postCommand(t, l, tt.body)

			testutil.AssertEqual(t, "status code", rec.Code, tt.expCode)
			if tt.expDetail != "" {
				var resp map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				testutil.AssertEqual(t, "detail", resp["detail"], tt.expDetail)
			}
		})
	}
}

func TestHandleStatus(t *testing.T) {
	l, state := newTestListener()
	state.RecordCommand("wake person_001", testStart)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	l.handleStatus(rec, req)

	testutil.AssertEqual(t, "status code", rec.Code, http.StatusOK)

	var resp struct {
		Entities []struct {
			EntityId string `json:"entity_id"`
			Name     string `json:"name"`
		} `json:"entities"`
		LastCommand string `json:"last_command"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	testutil.AssertEqual(t, "entity count", len(resp.Entities), 2)
	testutil.AssertEqual(t, "first entity", resp.Entities[0].EntityId, "person_001")
	testutil.AssertEqual(t, "name", resp.Entities[0].Name, "John Walker")
	testutil.AssertEqual(t, "last command", resp.LastCommand, "wake person_001")
}

func TestHandleShutdown(t *testing.T) {
	l, _ := newTestListener()

	req := httptest.NewRequest(http.MethodPost, "/shutdown", nil)
	rec := httptest.NewRecorder()
	l.handleShutdown(rec, req)

	testutil.AssertEqual(t, "status code", rec.Code, http.StatusOK)

	select {
	case <-l.stop:
	default:
		t.Error("expected stop channel to be closed")
	}

	// A second shutdown request must not panic on the closed channel.
	l.handleShutdown(httptest.NewRecorder(), req)
}
