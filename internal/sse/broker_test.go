package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/workbench/internal/testutil"
	"github.com/starford/workbench/internal/workspace"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "notes.created", Data: map[string]string{"id": "a"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: notes.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"a"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishChange_StatsThrottle(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	b := NewBroker(500*time.Millisecond, func() interface{} {
		mu.Lock()
		calls++
		mu.Unlock()
		return map[string]int{"notes": 1}
	})
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishChange(workspace.Event{Collection: workspace.CollectionNotes, Kind: workspace.KindCreated, ID: "a"})
	b.PublishChange(workspace.Event{Collection: workspace.CollectionTasks, Kind: workspace.KindUpdated, ID: "b"})
	b.PublishChange(workspace.Event{Collection: workspace.CollectionUI, Kind: workspace.KindUpdated})

	time.Sleep(50 * time.Millisecond)
	statsCount := 0
	var changes []string
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "stats.updated") {
				statsCount++
				if !strings.Contains(s, `"notes":1`) {
					t.Errorf("stats payload missing: %q", s)
				}
			} else {
				changes = append(changes, s)
			}
		default:
			break loop
		}
	}

	if len(changes) != 3 {
		t.Errorf("change events = %d, want 3", len(changes))
	}
	if len(changes) > 0 && !strings.Contains(changes[0], `"collection":"notes","kind":"created","id":"a"`) {
		t.Errorf("unexpected change payload %q", changes[0])
	}
	if statsCount != 1 {
		t.Errorf("stats events = %d, want 1 (throttled)", statsCount)
	}
	mu.Lock()
	if calls != 1 {
		t.Errorf("stats func calls = %d, want 1", calls)
	}
	mu.Unlock()
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishChange(workspace.Event{Collection: workspace.CollectionDocs, Kind: workspace.KindUpdated, ID: "d"})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: docs.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestStoreSubscription(t *testing.T) {
	b := NewBroker(time.Hour, nil)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	s, _ := testutil.Store(t)
	unsubscribe := s.Subscribe(b.PublishChange)
	defer unsubscribe()
	s.SetCommandPaletteOpen(true)

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "event: ui.updated") {
			t.Errorf("unexpected message %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for store change")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second, nil)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: "notes.updated"})
	b.PublishChange(workspace.Event{Collection: workspace.CollectionNotes, Kind: workspace.KindUpdated})
}

func TestFramesCarryIncreasingIDs(t *testing.T) {
	b := NewBroker(time.Hour, nil)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "a", Data: 1})
	b.Publish(Event{Type: "b", Data: 2})

	for _, want := range []string{"id: 1\nevent: a\ndata: 1\n\n", "id: 2\nevent: b\ndata: 2\n\n"} {
		select {
		case msg := <-ch:
			if string(msg) != want {
				t.Errorf("frame = %q, want %q", msg, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for frame")
		}
	}
}

func TestSSEHandler_RetryAndHeartbeat(t *testing.T) {
	b := NewBroker(time.Hour, nil, WithHeartbeat(20*time.Millisecond))
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	if !strings.HasPrefix(body, "retry: 3000\n\n") {
		t.Errorf("stream should open with a retry hint: %q", body)
	}
	if !strings.Contains(body, ": ping\n\n") {
		t.Errorf("no heartbeat in %q", body)
	}
	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q", got)
	}
}
