// Package lifecycle sequences one image analysis at a time: submission,
// waiting for the prediction service, and the terminal success or failure
// state that stays on screen until the user resets.
package lifecycle

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/kamilpajak/leafcheck/internal/logging"
	"github.com/kamilpajak/leafcheck/internal/metrics"
	"github.com/kamilpajak/leafcheck/internal/predict"
	"github.com/kamilpajak/leafcheck/internal/result"
	"github.com/sirupsen/logrus"
)

// GenericFailureMessage is shown for every failure the service did not
// describe itself.
const GenericFailureMessage = "An error occurred during analysis."

var (
	ErrAnalysisInFlight = errors.New("an analysis is already in progress")
	ErrResultDisplayed  = errors.New("a result is displayed, reset before analyzing another image")
	ErrStaleResponse    = errors.New("response discarded, the analysis was superseded")
)

// Observer renders lifecycle states. Observe is called synchronously, in
// subscription order, for every transition. Release is called on reset,
// before the Idle state is observed, and must free any visualization the
// observer holds. Observers may read Current and HeldImage, which can
// already reflect a later commit, but must not call Select or Reset from
// either method.
type Observer interface {
	Observe(State)
	Release()
}

// Predictor submits an image and returns the raw service payload.
// dispatched is called once the request has been sent.
type Predictor interface {
	Predict(ctx context.Context, img predict.Image, dispatched func()) ([]byte, error)
}

type subscription struct {
	id  int
	obs Observer
}

// Machine owns the single active analysis state.
type Machine struct {
	predictor Predictor
	log       *logrus.Logger

	mu         sync.Mutex
	generation uint64
	state      State
	image      *predict.Image
	observers  []subscription
	nextID     int
	committed  uint64 // sequence number of the last commit

	// Notifications run outside mu, one commit at a time, in commit order.
	notifyMu   sync.Mutex
	notifyTurn *sync.Cond
	notified   uint64 // guarded by notifyMu
}

// Option configures a Machine
type Option func(*Machine)

// WithLogger sets the logger used for transition tracing
func WithLogger(l *logrus.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// New creates a Machine in the Idle state.
func New(p Predictor, opts ...Option) *Machine {
	m := &Machine{
		predictor: p,
		log:       logging.Discard(),
		state:     State{Kind: Idle},
	}
	m.notifyTurn = sync.NewCond(&m.notifyMu)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers an observer and returns a function that removes it.
func (m *Machine) Subscribe(o Observer) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.observers = append(m.observers, subscription{id: id, obs: o})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.observers = slices.DeleteFunc(m.observers, func(s subscription) bool { return s.id == id })
	}
}

// Current returns the active state.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// HeldImage returns the image of the current submission, if any.
func (m *Machine) HeldImage() (predict.Image, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.image == nil {
		return predict.Image{}, false
	}
	return *m.image, true
}

// Select submits img for analysis and blocks until the submission settles.
// It is rejected while another submission is in flight or a result is
// displayed. Selecting after a failure resets first.
//
// The returned State is the terminal state reached by this submission.
// ErrStaleResponse means a reset happened while waiting; the response was
// dropped and the current state was left untouched.
func (m *Machine) Select(ctx context.Context, img predict.Image) (State, error) {
	m.mu.Lock()
	for m.state.Kind == Failed {
		m.resetLocked()
		m.mu.Lock()
	}
	switch m.state.Kind {
	case Submitting, Pending:
		st := m.state
		m.mu.Unlock()
		return st, ErrAnalysisInFlight
	case Succeeded:
		st := m.state
		m.mu.Unlock()
		return st, ErrResultDisplayed
	}

	m.generation++
	gen := m.generation
	m.image = &img
	m.commitLocked(State{Kind: Submitting, Generation: gen, Image: img.Name}, false)

	dispatched := make(chan struct{})
	var once sync.Once
	signal := func() { once.Do(func() { close(dispatched) }) }

	type response struct {
		payload []byte
		err     error
	}
	done := make(chan response, 1)
	go func() {
		payload, err := m.predictor.Predict(ctx, img, signal)
		done <- response{payload: payload, err: err}
	}()

	var resp response
	select {
	case <-dispatched:
		m.advance(gen, State{Kind: Pending, Generation: gen, Image: img.Name})
		resp = <-done
	case resp = <-done:
		select {
		case <-dispatched:
			m.advance(gen, State{Kind: Pending, Generation: gen, Image: img.Name})
		default:
		}
	}

	next := settle(resp.payload, resp.err)
	next.Generation = gen
	next.Image = img.Name

	m.mu.Lock()
	if m.generation != gen {
		st := m.state
		m.mu.Unlock()
		metrics.RecordStaleResponse()
		m.log.WithFields(logging.Fields{
			"generation": gen,
			"current":    st.Generation,
			"dropped":    next.Kind.String(),
		}).Debug("discarding stale prediction response")
		return st, ErrStaleResponse
	}
	m.commitLocked(next, false)
	return next, nil
}

// Reset returns to Idle, drops the held image and display model, and asks
// every observer to release its visualization. Any in-flight response
// becomes stale.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.resetLocked()
}

// resetLocked must be called with mu held and returns with it released.
func (m *Machine) resetLocked() {
	m.generation++
	m.image = nil
	m.commitLocked(State{Kind: Idle, Generation: m.generation}, true)
}

// advance commits next only if gen is still current.
func (m *Machine) advance(gen uint64, next State) {
	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return
	}
	m.commitLocked(next, false)
}

// commitLocked replaces the state and notifies observers. It must be called
// with mu held and returns with mu released.
func (m *Machine) commitLocked(next State, release bool) {
	prev := m.state
	m.state = next
	observers := slices.Clone(m.observers)
	m.committed++
	seq := m.committed
	m.mu.Unlock()

	m.waitTurn(seq)
	defer m.finishTurn(seq)

	m.log.WithFields(logging.Fields{
		"generation": next.Generation,
		"from":       prev.Kind.String(),
		"to":         next.Kind.String(),
	}).Debug("analysis state transition")
	metrics.RecordTransition(prev.Kind.String(), next.Kind.String())
	if next.Kind.Terminal() {
		metrics.RecordOutcome(next.Kind.String())
	}

	if release {
		for _, s := range observers {
			s.obs.Release()
		}
	}
	for _, s := range observers {
		s.obs.Observe(next)
	}
}

// waitTurn blocks until every commit before seq has been delivered.
func (m *Machine) waitTurn(seq uint64) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	for m.notified+1 != seq {
		m.notifyTurn.Wait()
	}
}

func (m *Machine) finishTurn(seq uint64) {
	m.notifyMu.Lock()
	m.notified = seq
	m.notifyMu.Unlock()
	m.notifyTurn.Broadcast()
}

// settle maps a prediction outcome to a terminal state.
func settle(payload []byte, err error) State {
	if err != nil {
		return failed(GenericFailureMessage, err)
	}

	resp, err := result.Decode(payload)
	if err != nil {
		return failed(GenericFailureMessage, err)
	}
	if svcErr := resp.Err(); svcErr != nil {
		return failed(svcErr.Error(), svcErr)
	}

	model, err := result.Build(resp)
	if err != nil {
		return failed(GenericFailureMessage, err)
	}
	return State{Kind: Succeeded, Model: model}
}

func failed(message string, err error) State {
	return State{Kind: Failed, Message: message, Err: err}
}
