// Package sse streams store change events to browser clients.
package sse

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// TreeEvent tells clients to refetch the folder tree. It is throttled.
const TreeEvent = "tree.updated"

const (
	clientBuffer      = 64
	defaultThrottle   = 2 * time.Second
	defaultKeepAlive  = 25 * time.Second
	clientRetryMillis = 3000
)

// Event is one server-sent event.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ChangeData is the payload of entity change events.
type ChangeData struct {
	ID string `json:"id,omitempty"`
}

// hub is the state owned by the broker loop. Only the loop touches it.
type hub struct {
	clients  map[chan []byte]struct{}
	seq      uint64
	lastTree time.Time
	throttle time.Duration
}

// send frames ev and offers it to every client. A client whose buffer is
// full misses the event.
func (h *hub) send(ev Event) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return
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
	frame := buf.Bytes()

	for ch := range h.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

// change sends "<entity>.<kind>" and, at most once per throttle window, a
// tree.updated after it.
func (h *hub) change(kind, entity, id string, now time.Time) {
	h.send(Event{Type: entity + "." + kind, Data: ChangeData{ID: id}})
	if now.Sub(h.lastTree) < h.throttle {
		return
	}
	h.lastTree = now
	h.send(Event{Type: TreeEvent, Data: struct{}{}})
}

// Broker fans events out to connected clients. Every public method is a
// command executed by a single loop goroutine, so hub needs no locking.
type Broker struct {
	cmds      chan func(*hub)
	done      chan struct{}
	stopOnce  sync.Once
	keepAlive time.Duration
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets how often an idle stream gets a comment line so
// proxies keep the connection open. Zero disables it.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) { b.keepAlive = d }
}

// NewBroker starts a broker that emits at most one tree.updated per
// treeThrottle.
func NewBroker(treeThrottle time.Duration, opts ...Option) *Broker {
	if treeThrottle <= 0 {
		treeThrottle = defaultThrottle
	}
	b := &Broker{
		cmds:      make(chan func(*hub), 256),
		done:      make(chan struct{}),
		keepAlive: defaultKeepAlive,
	}
	for _, opt := range opts {
		opt(b)
	}
	h := &hub{clients: make(map[chan []byte]struct{}), throttle: treeThrottle}
	go b.loop(h)
	return b
}

func (b *Broker) loop(h *hub) {
	for {
		select {
		case cmd := <-b.cmds:
			cmd(h)
		case <-b.done:
			for ch := range h.clients {
				close(ch)
			}
			return
		}
	}
}

// exec queues cmd for the loop. It reports false once the broker is closed.
func (b *Broker) exec(cmd func(*hub)) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.cmds <- cmd:
		return true
	case <-b.done:
		return false
	}
}

// Close stops the loop. Every subscriber channel is closed.
func (b *Broker) Close() {
	b.stopOnce.Do(func() { close(b.done) })
}

// Subscribe registers a client. The returned cancel func removes it and is
// safe to call more than once. After Close the channel comes back closed.
func (b *Broker) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, clientBuffer)
	registered := make(chan bool, 1)
	if !b.exec(func(h *hub) {
		h.clients[ch] = struct{}{}
		registered <- true
	}) {
		return closedStream(), func() {}
	}
	select {
	case <-registered:
	case <-b.done:
		return closedStream(), func() {}
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.exec(func(h *hub) {
				if _, ok := h.clients[ch]; ok {
					delete(h.clients, ch)
					close(ch)
				}
			})
		})
	}
	return ch, cancel
}

func closedStream() <-chan []byte {
	ch := make(chan []byte)
	close(ch)
	return ch
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	n := make(chan int, 1)
	if !b.exec(func(h *hub) { n <- len(h.clients) }) {
		return 0
	}
	select {
	case v := <-n:
		return v
	case <-b.done:
		return 0
	}
}

// Publish sends event to all clients as is.
func (b *Broker) Publish(event Event) {
	b.exec(func(h *hub) { h.send(event) })
}

// PublishChange sends "<entity>.<kind>" (note.created, folder.deleted,
// data.replaced, ...) followed by a throttled tree.updated.
func (b *Broker) PublishChange(kind, entity, id string) {
	now := time.Now()
	b.exec(func(h *hub) { h.change(kind, entity, id, now) })
}

// ServeHTTP streams events to one client (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := b.Subscribe()
	defer cancel()

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("retry: " + strconv.Itoa(clientRetryMillis) + "\n\n"))
	flusher.Flush()

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
		case frame, open := <-events:
			if !open {
				return
			}
			_, _ = w.Write(frame)
		}
		flusher.Flush()
	}
}
