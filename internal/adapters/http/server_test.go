package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/callable/zoo"
	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/dsl"
	"github.com/aretw0/wca/pkg/fsm"
	"github.com/aretw0/wca/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/neilotoole/slogt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bytesSeen records the size of the frame so predicates can branch on it.
var bytesSeen = &callable.ProcessorFunc{
	Name: "BytesSeen",
	Fn: func(_ context.Context, f domain.Frame) (map[string]any, error) {
		if string(f.Data) == "boom" {
			return nil, errors.New("exploded")
		}
		return map[string]any{"size": len(f.Data)}, nil
	},
}

func newTestServer(t *testing.T, opts ...Option) (*Server, http.Handler) {
	t.Helper()
	b := dsl.New()
	b.State("ping").Process(bytesSeen).On("pong").When(zoo.NewAlways()).Say("pong").Done()
	b.State("pong").Process(zoo.NewEmpty()).On("ping").When(zoo.NewAlways()).Say("ping").Done()
	start, err := b.Build("ping")
	require.NoError(t, err)

	mgr, err := session.NewManager(context.Background(), start, session.WithLogger(slogt.New(t)))
	require.NoError(t, err)

	opts = append([]Option{WithLogger(slogt.New(t)), WithGatherer(prometheus.NewRegistry())}, opts...)
	s := NewServer(mgr, fsm.Machine{Name: "pingpong", Start: start}, opts...)
	return s, s.Routes()
}

func do(t *testing.T, h http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestGetHealth(t *testing.T) {
	_, h := newTestServer(t)

	rr := do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rr)["status"])
}

func TestGetInfo(t *testing.T) {
	_, h := newTestServer(t)

	resp := decode[map[string]string](t, do(t, h, "GET", "/info", nil))
	assert.Equal(t, "wca-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
	assert.Equal(t, "pingpong", resp["machine"])
}

func TestSessionLifecycle(t *testing.T) {
	_, h := newTestServer(t)

	rr := do(t, h, "POST", "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[session.Snapshot](t, rr)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "ping", created.State)
	assert.Equal(t, "/v1/sessions/"+created.ID, rr.Header().Get("Location"))

	base := "/v1/sessions/" + created.ID

	rr = do(t, h, "POST", base+"/frames?frame_id=7", strings.NewReader("jpeg"))
	require.Equal(t, http.StatusOK, rr.Code)
	fed := decode[FeedResponse](t, rr)
	assert.Equal(t, uint64(7), fed.FrameID)
	require.NotNil(t, fed.Instruction)
	assert.Equal(t, "pong", fed.Instruction.Audio)
	assert.Equal(t, "pong", fed.Session.State)

	got := decode[session.Snapshot](t, do(t, h, "GET", base, nil))
	assert.Equal(t, "pong", got.State)
	assert.Equal(t, uint64(1), got.Frames)

	ids := decode[map[string][]string](t, do(t, h, "GET", "/v1/sessions", nil))
	assert.Equal(t, []string{created.ID}, ids["sessions"])

	reset := decode[session.Snapshot](t, do(t, h, "POST", base+"/reset", nil))
	assert.Equal(t, "ping", reset.State)

	assert.Equal(t, http.StatusNoContent, do(t, h, "DELETE", base, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", base, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "DELETE", base, nil).Code)
}

func TestPostFrame_Errors(t *testing.T) {
	_, h := newTestServer(t)

	rr := do(t, h, "POST", "/v1/sessions/s1/frames?frame_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "POST", "/v1/sessions/s1/frames", strings.NewReader("boom"))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	resp := decode[FeedResponse](t, rr)
	assert.Contains(t, resp.Error, "exploded")
	assert.Nil(t, resp.Instruction)
	assert.Equal(t, "ping", resp.Session.State, "a failed step keeps the current state")

	// The session accepts frames again after a step error.
	rr = do(t, h, "POST", "/v1/sessions/s1/frames", strings.NewReader("ok"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAPIDocument_CoversRoutes(t *testing.T) {
	doc, err := LoadAPIDocument()
	require.NoError(t, err)

	s, _ := newTestServer(t)
	undocumented := map[string]bool{"/openapi.yaml": true, "/swagger": true}
	err = chi.Walk(s.Routes().(chi.Routes), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.TrimSuffix(route, "/")
		if undocumented[route] {
			return nil
		}
		item := doc.Paths.Value(route)
		if assert.NotNil(t, item, "route %s", route) {
			assert.NotNil(t, item.GetOperation(method), "%s %s", method, route)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestGetAPIDocument(t *testing.T) {
	_, h := newTestServer(t)

	rr := do(t, h, "GET", "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/yaml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "openapi: 3.0.3")
}

func TestRequestValidation(t *testing.T) {
	_, h := newTestServer(t)

	rr := do(t, h, "GET", "/v1/machine?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string]string](t, rr)["error"], "format")

	rr = do(t, h, "POST", "/v1/sessions/s1/frames?frame_id=-1", strings.NewReader("x"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string]string](t, rr)["error"], "frame_id")
	ids := decode[map[string][]string](t, do(t, h, "GET", "/v1/sessions", nil))
	assert.Empty(t, ids["sessions"], "rejected frames never reach a session")

	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/v1/machine?format=json", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/v1/nowhere", nil).Code)
}

func TestGetMachine(t *testing.T) {
	_, h := newTestServer(t)

	view := decode[MachineView](t, do(t, h, "GET", "/v1/machine", nil))
	assert.Equal(t, "pingpong", view.Name)
	assert.Equal(t, "ping", view.Start)
	require.Len(t, view.States, 2)
	assert.Equal(t, "ping", view.States[0].Name)
	assert.Equal(t, "BytesSeen", view.States[0].Processors[0].Class)
	assert.Equal(t, "pong", view.States[0].Transitions[0].NextState)
	assert.Equal(t, zoo.AlwaysName, view.States[0].Transitions[0].Predicates[0].Class)

	assert.Equal(t, http.StatusNotImplemented, do(t, h, "GET", "/v1/machine?format=binary", nil).Code)
}

func TestGetMachine_Binary(t *testing.T) {
	regs := zoo.Default()
	regs.Processors.Register("BytesSeen", func(callable.Args) (callable.Processor, error) { return bytesSeen, nil })
	_, h := newTestServer(t, WithRegistries(regs))

	rr := do(t, h, "GET", "/v1/machine?format=binary", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ContentTypeMachine, rr.Header().Get("Content-Type"))

	m, err := fsm.DecodeMachine(rr.Body.Bytes(), regs)
	require.NoError(t, err)
	assert.Equal(t, "pingpong", m.Name)
	assert.Equal(t, "ping", m.Start.Name)
}

func TestGetMachineGraph(t *testing.T) {
	_, h := newTestServer(t)

	rr := do(t, h, "GET", "/v1/machine/graph", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "graph TD\n"))
	assert.NotContains(t, rr.Body.String(), "current")

	do(t, h, "POST", "/v1/sessions/s1/frames", strings.NewReader("x"))
	rr = do(t, h, "GET", "/v1/machine/graph?session=s1", nil)
	assert.Contains(t, rr.Body.String(), "class pong current;")

	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/v1/machine/graph?session=nope", nil).Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "wca_test_total"}))
	_, h := newTestServer(t, WithGatherer(reg))

	rr := do(t, h, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "wca_test_total 0")
}

func TestStreamFrames(t *testing.T) {
	_, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/sessions/ws1/stream"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	for i, want := range []string{"pong", "ping"} {
		require.NoError(t, c.WriteMessage(websocket.BinaryMessage, []byte("frame")))
		var resp FeedResponse
		require.NoError(t, c.ReadJSON(&resp))
		assert.Equal(t, uint64(i+1), resp.FrameID)
		require.NotNil(t, resp.Instruction)
		assert.Equal(t, want, resp.Instruction.Audio)
		assert.Equal(t, "ws1", resp.Session.ID)
	}

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("hello")))
	var resp FeedResponse
	require.NoError(t, c.ReadJSON(&resp))
	assert.Contains(t, resp.Error, "binary")
}

func TestSubscribeEvents(t *testing.T) {
	s, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	req, err := http.NewRequest("GET", srv.URL+"/v1/sessions/s1/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewReader(resp.Body)
	readData := func() string {
		for {
			line, err := lines.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}
	assert.Equal(t, "connected", readData())
	require.Eventually(t, func() bool { return s.Streams.Subscribers("s1") == 1 }, time.Second, 10*time.Millisecond)

	rr := do(t, h, "POST", "/v1/sessions/s1/frames", bytes.NewReader([]byte("x")))
	require.Equal(t, http.StatusOK, rr.Code)

	var event FeedResponse
	require.NoError(t, json.Unmarshal([]byte(readData()), &event))
	assert.Equal(t, "pong", event.Session.State)
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe("a")
	assert.Equal(t, 1, sm.Subscribers("a"))

	sm.Broadcast("a", "hello")
	sm.Broadcast("b", "nobody listens")
	assert.Equal(t, "hello", <-ch)

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("a"))
	_, open := <-ch
	assert.False(t, open)
}
