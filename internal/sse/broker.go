// Package sse streams workspace changes to browsers as Server-Sent Events.
//
// A single goroutine owns the client set, the event sequence and the stats
// throttle; the exported methods talk to it over channels.
package sse

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/starford/workbench/internal/workspace"
)

const (
	clientBuffer = 64
	queueSize    = 256

	defaultStatsThrottle = 2 * time.Second
	defaultHeartbeat     = 25 * time.Second
	retryMillis          = 3000
)

// Event is one named message on the stream.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// StatsFunc returns the payload of the throttled stats.updated event.
type StatsFunc func() interface{}

// Option configures a Broker.
type Option func(*Broker)

// WithHeartbeat sets how often idle streams receive a keep-alive comment.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.heartbeat = d
		}
	}
}

// Broker fans store changes out to every connected stream.
type Broker struct {
	statsMin  time.Duration
	stats     StatsFunc
	heartbeat time.Duration

	joinCh   chan chan []byte
	leaveCh  chan chan []byte
	publishC chan Event
	changeCh chan workspace.Event
	countCh  chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that emits stats.updated at most once per
// statsThrottle. A nil stats func yields an empty payload.
func NewBroker(statsThrottle time.Duration, stats StatsFunc, opts ...Option) *Broker {
	if statsThrottle <= 0 {
		statsThrottle = defaultStatsThrottle
	}
	if stats == nil {
		stats = func() interface{} { return map[string]int{} }
	}
	b := &Broker{
		statsMin:  statsThrottle,
		stats:     stats,
		heartbeat: defaultHeartbeat,
		joinCh:    make(chan chan []byte),
		leaveCh:   make(chan chan []byte),
		publishC:  make(chan Event, queueSize),
		changeCh:  make(chan workspace.Event, queueSize),
		countCh:   make(chan chan int),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

// hub is the state owned by the run loop.
type hub struct {
	clients   map[chan []byte]struct{}
	seq       uint64
	lastStats time.Time
}

// frame encodes ev in the text/event-stream format with a monotonically
// increasing id.
func (h *hub) frame(ev Event) ([]byte, bool) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, false
	}
	h.seq++
	var buf bytes.Buffer
	buf.WriteString("id: ")
	buf.WriteString(strconv.FormatUint(h.seq, 10))
	buf.WriteString("\nevent: ")
	buf.WriteString(ev.Type)
	buf.WriteString("\ndata: ")
	buf.Write(payload)
	buf.WriteString("\n\n")
	return buf.Bytes(), true
}

func (h *hub) broadcast(ev Event) {
	raw, ok := h.frame(ev)
	if !ok {
		return
	}
	for ch := range h.clients {
		select {
		case ch <- raw:
		default:
			// Slow client: drop rather than stall the loop.
		}
	}
}

func (b *Broker) run() {
	defer close(b.stopped)
	h := &hub{clients: make(map[chan []byte]struct{})}

	for {
		select {
		case <-b.stopCh:
			for ch := range h.clients {
				close(ch)
			}
			return

		case ch := <-b.joinCh:
			h.clients[ch] = struct{}{}

		case ch := <-b.leaveCh:
			if _, ok := h.clients[ch]; ok {
				delete(h.clients, ch)
				close(ch)
			}

		case ev := <-b.publishC:
			h.broadcast(ev)

		case ev := <-b.changeCh:
			h.broadcast(Event{Type: string(ev.Collection) + "." + string(ev.Kind), Data: ev})
			if !countsTowardStats(ev) {
				continue
			}
			if now := time.Now(); now.Sub(h.lastStats) >= b.statsMin {
				h.lastStats = now
				h.broadcast(Event{Type: "stats.updated", Data: b.stats()})
			}

		case resp := <-b.countCh:
			resp <- len(h.clients)
		}
	}
}

// countsTowardStats reports whether ev can change the collection counters.
func countsTowardStats(ev workspace.Event) bool {
	return ev.Collection != workspace.CollectionUI && ev.Collection != workspace.CollectionStorage
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. The returned channel is closed when the
// client leaves or the broker stops.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.joinCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leaveCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an arbitrary event to all clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishC <- event:
	case <-b.stopped:
	}
}

// PublishChange relays a store change. It runs on the store's mutating
// goroutine, so it never blocks: a full queue drops the change.
func (b *Broker) PublishChange(ev workspace.Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- ev:
	default:
	}
}

// ServeHTTP streams events until the request context ends or the broker
// stops. Idle streams get a comment line every heartbeat interval.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("retry: " + strconv.Itoa(retryMillis) + "\n\n"))
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		case <-ticker.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		}
	}
}
