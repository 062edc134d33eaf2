// Package evolution tracks one entity's triadic state over time and detects
// attractors, cycles, trends and critical transitions in that history.
package evolution

import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/triad-field/internal/metrics"
)

// #region tracker
// Tracker owns a single ordered timeline. It is not safe for concurrent use;
// each timeline has exactly one owner.
type Tracker struct {
	config      TrackerConfig
	states      []State
	transitions []Transition
	events      []CriticalEvent
	nextSeq     int
	sink        EventSink
	now         func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker(config TrackerConfig) *Tracker {
	return &Tracker{config: config, now: func() time.Time { return time.Now().UTC() }}
}

// SetClock replaces the source of timestamps for states recorded without one.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// SetEventSink registers s to receive every critical event after it is logged.
func (t *Tracker) SetEventSink(s EventSink) {
	t.sink = s
}

// Config returns the tracker's configuration.
func (t *Tracker) Config() TrackerConfig {
	return t.config
}

// #endregion tracker

// #region record
// Record appends a new state. A zero timestamp means now. If a previous state
// exists the transition between them is classified and checked for critical
// events. Input is not validated; NaN propagates through the metrics.
func (t *Tracker) Record(pattern, intent, presence float64, timestamp time.Time) State {
	if timestamp.IsZero() {
		timestamp = t.now()
	}
	s := State{
		Triad:     metrics.Triad{Pattern: pattern, Intent: intent, Presence: presence},
		Timestamp: timestamp,
	}

	if n := len(t.states); n > 0 {
		tr := newTransition(t.states[n-1], s, t.config)
		t.transitions = append(t.transitions, tr)
		t.checkCriticalEvents(tr)
	}
	t.states = append(t.states, s)

	if limit := t.config.MaxHistory; limit > 0 {
		if len(t.states) > limit {
			t.states = t.states[1:]
		}
		if len(t.transitions) > limit-1 {
			t.transitions = t.transitions[len(t.transitions)-(limit-1):]
		}
	}
	return s
}

// RecordTriad is Record for a Triad value.
func (t *Tracker) RecordTriad(tr metrics.Triad, timestamp time.Time) State {
	return t.Record(tr.Pattern, tr.Intent, tr.Presence, timestamp)
}

// #endregion record

// #region classify
func newTransition(from, to State, cfg TrackerConfig) Transition {
	return Transition{
		From:  from,
		To:    to,
		Delta: to.Sub(from.Triad),
		Type:  classify(from, to, cfg.AmplifyRatio, cfg.AttenuateRatio),
	}
}

// classify applies validity first, then the strength ratio bands.
func classify(from, to State, amplify, attenuate float64) TransitionType {
	fromValid, toValid := from.Coherent(), to.Coherent()
	switch {
	case !fromValid && !toValid:
		return VoidToVoid
	case !fromValid && toValid:
		return Emergence
	case fromValid && !toValid:
		return Collapse
	}

	fromStrength, toStrength := from.Strength(), to.Strength()
	switch {
	case toStrength > fromStrength*amplify:
		return Amplification
	case toStrength < fromStrength*attenuate:
		return Attenuation
	default:
		return Maintenance
	}
}

// #endregion classify

// #region critical-events
// checkCriticalEvents evaluates every rule independently; a large emergence
// jump logs both an emergence and a phase transition.
func (t *Tracker) checkCriticalEvents(tr Transition) {
	switch tr.Type {
	case Emergence:
		t.logEvent(EventEmergence, tr.To, "system emerged from void into coherence")
	case Collapse:
		t.logEvent(EventCollapse, tr.To, "coherence collapsed into void")
	}
	if mag := tr.Magnitude(); mag > t.config.PhaseJumpMagnitude {
		t.logEvent(EventPhaseTransition, tr.To, fmt.Sprintf("large state jump (magnitude: %.2f)", mag))
	}
}

func (t *Tracker) logEvent(kind EventKind, s State, desc string) {
	ev := CriticalEvent{
		Seq:         t.nextSeq,
		Kind:        kind,
		Timestamp:   s.Timestamp,
		Description: desc,
		State:       s.Triad,
	}
	t.nextSeq++
	t.events = append(t.events, ev)
	if limit := t.config.MaxEvents; limit > 0 && len(t.events) > limit {
		t.events = t.events[len(t.events)-limit:]
	}
	if t.sink != nil {
		t.sink.OnEvent(ev)
	}
}

// #endregion critical-events

// #region accessors
// Len is the number of retained states.
func (t *Tracker) Len() int {
	return len(t.states)
}

// Current returns the most recent state.
func (t *Tracker) Current() (State, bool) {
	if len(t.states) == 0 {
		return State{}, false
	}
	return t.states[len(t.states)-1], true
}

// States returns a copy of the retained states, oldest first.
func (t *Tracker) States() []State {
	return append([]State(nil), t.states...)
}

// Transitions returns a copy of the retained transitions, oldest first.
func (t *Tracker) Transitions() []Transition {
	return append([]Transition(nil), t.transitions...)
}

// LastTransition returns the most recent retained transition.
func (t *Tracker) LastTransition() (Transition, bool) {
	if len(t.transitions) == 0 {
		return Transition{}, false
	}
	return t.transitions[len(t.transitions)-1], true
}

// Events returns a copy of the retained critical events, oldest first.
func (t *Tracker) Events() []CriticalEvent {
	return append([]CriticalEvent(nil), t.events...)
}

// Trajectory returns a copy of the most recent window states.
func (t *Tracker) Trajectory(window int) []State {
	return append([]State(nil), t.recent(window)...)
}

// ExportTrajectory returns every retained state with its derived metrics.
func (t *Tracker) ExportTrajectory() []TrajectoryPoint {
	out := make([]TrajectoryPoint, len(t.states))
	for i, s := range t.states {
		out[i] = TrajectoryPoint{
			Timestamp: s.Timestamp,
			Pattern:   s.Pattern,
			Intent:    s.Intent,
			Presence:  s.Presence,
			Valid:     s.Coherent(),
			Strength:  s.Strength(),
			Balance:   s.Balance(),
		}
	}
	return out
}

// recent aliases the tracker's slice; callers must not retain it.
func (t *Tracker) recent(window int) []State {
	if window <= 0 || len(t.states) <= window {
		return t.states
	}
	return t.states[len(t.states)-window:]
}

// #endregion accessors
