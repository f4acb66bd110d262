package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/fernspiel/pkg/adapters/memory"
	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/phone"
	"github.com/aretw0/fernspiel/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockControl struct {
	mock.Mock
}

func (m *MockControl) Switch(ctx context.Context, b *book.Book) error {
	return m.Called(b.Name()).Error(0)
}

func (m *MockControl) Reset(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockControl) Dial(ctx context.Context, in domain.Input) error {
	return m.Called(in).Error(0)
}

func (m *MockControl) Status(ctx context.Context) (ports.Status, error) {
	args := m.Called()
	return args.Get(0).(ports.Status), args.Error(1)
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	s, err := NewServer(context.Background(), opts...)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestLoadSpec(t *testing.T) {
	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fernspiel", doc.Info.Title)
}

func TestRoutesAreDocumented(t *testing.T) {
	s := newTestServer(t,
		WithControl(new(MockControl)),
		WithGatherer(prometheus.NewRegistry()),
		WithJournal(memory.NewJournal(0)),
	)

	routes := 0
	err := chi.Walk(s.routes(), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes++
		item := s.spec.Paths.Value(route)
		if assert.NotNil(t, item, "route %s is not documented", route) {
			assert.NotNil(t, item.GetOperation(method), "operation %s %s is not documented", method, route)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 13, routes)
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "fernspiel", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.NotEmpty(t, info["version"])

	w = do(t, h, http.MethodGet, "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestGetState(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	w := do(t, h, http.MethodGet, "/state", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	event := domain.StateEvent{RunID: "r", Book: "demo", StateID: "greet", Name: "Greeting", Timestamp: time.Unix(0, 0).UTC()}
	require.NoError(t, s.Publish(context.Background(), event))

	w = do(t, h, http.MethodGet, "/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.StateEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, event, got)
}

func TestSubscribeEvents(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	readUntil := func(prefix string) string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q", prefix)
		return ""
	}

	readUntil("event: ping")
	require.Eventually(t, func() bool { return s.Streams.Len() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Publish(context.Background(), domain.StateEvent{StateID: "menu"}))

	readUntil("event: state")
	data := strings.TrimPrefix(readUntil("data: "), "data: ")
	var got domain.StateEvent
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.Equal(t, "menu", got.StateID)
}

func TestGetPhone(t *testing.T) {
	w := do(t, newTestServer(t).Handler(), http.MethodGet, "/phone", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	line := phone.NewSimLine()
	line.Press(domain.InputPickUp)
	w = do(t, newTestServer(t, WithPhone(phone.New(line))).Handler(), http.MethodGet, "/phone", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"off_hook":true,"ringing":false}`, w.Body.String())
}

func TestControlRoutesRequireControl(t *testing.T) {
	w := do(t, newTestServer(t).Handler(), http.MethodPost, "/reset", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSwitchBook(t *testing.T) {
	ctrl := new(MockControl)
	ctrl.On("Switch", "uploaded").Return(nil)
	ctrl.On("Status").Return(ports.Status{Book: "uploaded", StateID: "hello"}, nil)
	h := newTestServer(t, WithControl(ctrl)).Handler()

	w := do(t, h, http.MethodPost, "/book", []byte("name: uploaded\nstates:\n  - id: hello\n"))
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"run_id":"","book":"uploaded","index":0,"state_id":"hello","name":"","terminal":false}`, w.Body.String())
	ctrl.AssertExpectations(t)
}

func TestSwitchBook_InvalidDocument(t *testing.T) {
	ctrl := new(MockControl)
	h := newTestServer(t, WithControl(ctrl)).Handler()

	w := do(t, h, http.MethodPost, "/book", []byte("name: broken\ninitial: nowhere\nstates:\n  - id: a\n    end: b\n"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Details)
	ctrl.AssertNotCalled(t, "Switch", mock.Anything)
}

func TestSwitchBook_Rejected(t *testing.T) {
	ctrl := new(MockControl)
	ctrl.On("Switch", "uploaded").Return(domain.ErrMissingSound)
	h := newTestServer(t, WithControl(ctrl)).Handler()

	w := do(t, h, http.MethodPost, "/book", []byte("name: uploaded\nstates:\n  - id: hello\n"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSwitchBook_RunnerStopped(t *testing.T) {
	ctrl := new(MockControl)
	ctrl.On("Switch", "uploaded").Return(domain.ErrRunnerStopped)
	h := newTestServer(t, WithControl(ctrl)).Handler()

	w := do(t, h, http.MethodPost, "/book", []byte("name: uploaded\nstates:\n  - id: hello\n"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestResetAndDial(t *testing.T) {
	ctrl := new(MockControl)
	ctrl.On("Reset").Return(nil)
	ctrl.On("Dial", domain.Dial(7)).Return(nil)
	ctrl.On("Dial", domain.InputHangUp).Return(nil)
	h := newTestServer(t, WithControl(ctrl)).Handler()

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/reset", nil).Code)
	assert.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, "/dial/7", nil).Code)
	assert.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, "/dial/hang_up", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/dial/star", nil).Code)
	ctrl.AssertExpectations(t)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	w := do(t, newTestServer(t, WithGatherer(reg)).Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_total 1")
}

func TestJournalRoutes(t *testing.T) {
	j := memory.NewJournal(0)
	ctx := context.Background()
	require.NoError(t, j.Publish(ctx, domain.StateEvent{RunID: "r1", Book: "demo", StateID: "ring", Name: "ring"}))
	require.NoError(t, j.Publish(ctx, domain.StateEvent{RunID: "r1", Book: "demo", StateID: "talk", Name: "talk"}))

	h := newTestServer(t, WithJournal(j)).Handler()

	w := do(t, h, http.MethodGet, "/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["r1"]`, w.Body.String())

	w = do(t, h, http.MethodGet, "/runs/r1/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var events []domain.StateEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, "ring", events[0].StateID)
	assert.Equal(t, "talk", events[1].StateID)

	w = do(t, h, http.MethodGet, "/runs/unknown/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestJournalRoutesRequireJournal(t *testing.T) {
	h := newTestServer(t).Handler()
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/runs", nil).Code)
}
