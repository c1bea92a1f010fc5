package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"climate_control/internal/models"
	"climate_control/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 1 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 1 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 1 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 1 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 1 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialWS(t *testing.T, s *service.Service, query url.Values) *websocket.Conn {
	t.Helper()
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestWebSocket_DeviceStream_InitialAndPeriodic(t *testing.T) {
	mon := &mockMonitoring{view: service.StatusView{
		Adapter:  "hci0",
		DeviceID: "dev-1",
		ActualF:  70,
		TargetF:  72,
		Status:   models.DeviceStatus{OperatingMode: models.ModeCool, FanStep: 40},
	}}
	sess := &mockSessions{}
	s := &service.Service{Monitoring: mon, Sessions: sess}

	conn := dialWS(t, s, url.Values{"device": {"dev-1"}, "interval_ms": {"20"}})

	env := readEnvelope(t, conn)
	if env.Type != "status" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var view service.StatusView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if view.TargetF != 72 || view.Status.OperatingMode != models.ModeCool {
		t.Fatalf("unexpected status: %+v", view)
	}

	// Read a subsequent tick
	if env := readEnvelope(t, conn); env.Type != "status" {
		t.Fatalf("expected type=status, got %+v", env)
	}
	if sess.reevaluateCalls() != 1 {
		t.Fatalf("expected one reevaluate on connect, got %d", sess.reevaluateCalls())
	}
}

func TestWebSocket_MissingStatusKeepsStreaming(t *testing.T) {
	mon := &mockMonitoring{err: service.ErrNoStatus}
	s := &service.Service{Monitoring: mon, Sessions: &mockSessions{}}

	conn := dialWS(t, s, url.Values{"device": {"dev-9"}, "interval_ms": {"20"}})

	for i := 0; i < 2; i++ {
		env := readEnvelope(t, conn)
		if env.Error == "" || len(env.Data) != 0 {
			t.Fatalf("expected error envelope, got %+v", env)
		}
	}
}

func TestWebSocket_AllStatusesWithoutDevice(t *testing.T) {
	mon := &mockMonitoring{views: []service.StatusView{
		{Adapter: "hci0", DeviceID: "dev-1"},
		{Adapter: "hci0", DeviceID: "dev-2"},
	}}
	s := &service.Service{Monitoring: mon, Sessions: &mockSessions{}}

	conn := dialWS(t, s, url.Values{})

	env := readEnvelope(t, conn)
	if env.Type != "statuses" {
		t.Fatalf("expected type=statuses, got %+v", env)
	}
	var views []service.StatusView
	if err := json.Unmarshal(env.Data, &views); err != nil || len(views) != 2 {
		t.Fatalf("unexpected statuses %s (%v)", env.Data, err)
	}
}
