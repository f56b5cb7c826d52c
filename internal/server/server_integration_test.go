package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

func TestAPI_SessionJournal(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	sess, _ := s.Sessions().Create()
	s.Events().Record(&store.Event{SessionID: sess.ID, Kind: "launch", App: "calculator", Vector: "[T,T,T,F]"})
	s.Sessions().End(sess.ID, store.EndReasonGesture)

	srv := New(Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	resp, err := client.Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions error = %v", err)
	}
	var listed struct {
		Sessions []store.Session `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Sessions) != 1 || listed.Sessions[0].ID != sess.ID {
		t.Fatalf("unexpected sessions: %+v", listed.Sessions)
	}

	resp, err = client.Get(ts.URL + "/api/sessions/" + sess.ID + "/events")
	if err != nil {
		t.Fatalf("GET events error = %v", err)
	}
	var events struct {
		Events []store.Event `json:"events"`
	}
	json.NewDecoder(resp.Body).Decode(&events)
	resp.Body.Close()

	if len(events.Events) != 1 || events.Events[0].App != "calculator" {
		t.Errorf("unexpected events: %+v", events.Events)
	}
}

func TestLiveHandler_PushesSnapshots(t *testing.T) {
	src := &fakeSource{snap: session.Snapshot{
		Running:    true,
		Enabled:    true,
		LastAction: "launch(notepad)",
		State:      control.ActionState{}.With(control.Notepad, control.Open),
	}}

	srv := New(Config{Source: src})
	srv.live.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.live.Run(ctx)

	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error = %v", err)
	}

	var got struct {
		LastAction string            `json:"last_action"`
		State      map[string]string `json:"state"`
	}
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if got.LastAction != "launch(notepad)" || got.State["notepad"] != "open" {
		t.Errorf("unexpected snapshot: %s", msg)
	}
}

func TestServer_ListenAndServe_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	srv := New(Config{Source: &fakeSource{}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, addr) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/api/health")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
