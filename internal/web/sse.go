package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/kamilpajak/leafcheck/internal/lifecycle"
)

// SSEEmitter writes Server-Sent Events.
type SSEEmitter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEEmitter creates an SSEEmitter for the given ResponseWriter.
// Returns nil if the writer does not support flushing.
func NewSSEEmitter(w http.ResponseWriter) *SSEEmitter {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil
	}
	return &SSEEmitter{w: w, flusher: f}
}

// Emit writes one named event with a JSON payload and flushes.
func (e *SSEEmitter) Emit(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}

// Event names sent on /api/events
const (
	EventState   = "state"
	EventRelease = "release"
)

type streamEvent struct {
	name  string
	state lifecycle.State
}

// streamObserver forwards lifecycle callbacks to one SSE connection.
// Callbacks never block: when the client falls behind, events are dropped
// and the next state event brings it up to date.
type streamObserver struct {
	events chan streamEvent

	mu      sync.Mutex
	dropped int
}

func newStreamObserver() *streamObserver {
	return &streamObserver{events: make(chan streamEvent, 16)}
}

func (o *streamObserver) Observe(s lifecycle.State) {
	o.send(streamEvent{name: EventState, state: s})
}

func (o *streamObserver) Release() {
	o.send(streamEvent{name: EventRelease})
}

func (o *streamObserver) send(ev streamEvent) {
	select {
	case o.events <- ev:
	default:
		o.mu.Lock()
		o.dropped++
		o.mu.Unlock()
	}
}

func (o *streamObserver) Dropped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}
