package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"climate_control/internal/link"
	"climate_control/internal/service"
)

func TestSessionHandlers(t *testing.T) {
	sess := &mockSessions{info: service.SessionInfo{Adapter: "hci0", State: "attached"}}
	disc := &mockDiscovery{adapters: []string{"hci0", "hci1"}, devices: []string{"dev-1"}}
	s := &service.Service{Authorization: &mockAuth{parseID: 7}, Sessions: sess, Discovery: disc}
	r := newTestRouter(s)

	w := doAuthed(r, http.MethodGet, "/api/v1/adapters", "")
	if w.Code != http.StatusOK {
		t.Fatalf("adapters status=%d", w.Code)
	}
	var adapters struct {
		Count    int      `json:"count"`
		Adapters []string `json:"adapters"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &adapters)
	if adapters.Count != 2 {
		t.Fatalf("unexpected adapters: %+v", adapters)
	}

	w = doAuthed(r, http.MethodGet, "/api/v1/adapters/hci1/devices", "")
	if w.Code != http.StatusOK || disc.lastAdapter != "hci1" {
		t.Fatalf("scan status=%d adapter=%q", w.Code, disc.lastAdapter)
	}

	w = doAuthed(r, http.MethodPost, "/api/v1/session", `{"adapter":"hci0"}`)
	if w.Code != http.StatusOK || sess.lastAdapter != "hci0" {
		t.Fatalf("activate status=%d adapter=%q", w.Code, sess.lastAdapter)
	}
	var info service.SessionInfo
	_ = json.Unmarshal(w.Body.Bytes(), &info)
	if info.State != "attached" {
		t.Fatalf("unexpected session info: %+v", info)
	}

	// empty body picks the first adapter
	w = doAuthed(r, http.MethodPost, "/api/v1/session", "")
	if w.Code != http.StatusOK || sess.lastAdapter != "" {
		t.Fatalf("activate without body status=%d adapter=%q", w.Code, sess.lastAdapter)
	}

	if w := doAuthed(r, http.MethodGet, "/api/v1/session", ""); w.Code != http.StatusOK {
		t.Fatalf("get session status=%d", w.Code)
	}
	if w := doAuthed(r, http.MethodPost, "/api/v1/session/reevaluate", ""); w.Code != http.StatusOK || sess.reevaluateCalls() != 1 {
		t.Fatalf("reevaluate status=%d calls=%d", w.Code, sess.reevaluateCalls())
	}
	if w := doAuthed(r, http.MethodDelete, "/api/v1/session", ""); w.Code != http.StatusOK || sess.deactivated != 1 {
		t.Fatalf("deactivate status=%d calls=%d", w.Code, sess.deactivated)
	}

	sess.err = service.ErrNoAdapters
	if w := doAuthed(r, http.MethodPost, "/api/v1/session", `{"adapter":"hci0"}`); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 without adapters, got %d", w.Code)
	}

	disc.err = link.ErrTimeout
	if w := doAuthed(r, http.MethodGet, "/api/v1/adapters", ""); w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on link timeout, got %d", w.Code)
	}
}
