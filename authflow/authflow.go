// Package authflow models the connection handshake a client walks through
// before its first turn: connect, verify credentials, sync state. The
// machine is explicit data rather than control flow so a presentation
// layer can render progress from the transition history alone.
package authflow

import (
	"context"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
)

// Phase is one step of the handshake. Complete and Error are terminal.
type Phase string

const (
	PhaseConnecting Phase = "connecting"
	PhaseVerifying  Phase = "verifying"
	PhaseSyncing    Phase = "syncing"
	PhaseRetrying   Phase = "retrying"
	PhaseComplete   Phase = "complete"
	PhaseError      Phase = "error"
)

// Transition records one phase entry.
type Transition struct {
	Phase     Phase           `json:"phase"`
	Attempt   int             `json:"attempt"`
	EnteredAt strfmt.DateTime `json:"entered_at"`
}

// Tracker accumulates the transition history of a single handshake. It is
// owned by one goroutine.
type Tracker struct {
	history []Transition
	attempt int

	// now is swapped in tests.
	now func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Enter records the phase with the current attempt number.
func (t *Tracker) Enter(p Phase) {
	t.history = append(t.history, Transition{
		Phase:     p,
		Attempt:   t.attempt,
		EnteredAt: strfmt.DateTime(t.now()),
	})
}

// Current returns the most recently entered transition, or a zero value
// when nothing has been recorded yet.
func (t *Tracker) Current() Transition {
	if len(t.history) == 0 {
		return Transition{}
	}
	return t.history[len(t.history)-1]
}

// History returns every recorded transition in order.
func (t *Tracker) History() []Transition {
	out := make([]Transition, len(t.history))
	copy(out, t.history)
	return out
}

// Step is one unit of the handshake. A non-nil error fails the attempt.
type Step func(ctx context.Context) error

// Runner drives the handshake through a Tracker, retrying the whole
// sequence on failure. Each new attempt supersedes the previous one; only
// the final attempt's error is surfaced.
type Runner struct {
	// MaxAttempts bounds the number of full passes. Zero means 3.
	MaxAttempts int

	// BaseDelay is the pause before the second attempt; it grows linearly
	// with the attempt number. Zero means 500ms.
	BaseDelay time.Duration

	Connect Step
	Verify  Step
	Sync    Step
}

// Run walks connecting, verifying, syncing in order. On step failure it
// enters retrying, waits, and starts over; after the final attempt it
// enters the error phase and returns the last failure. Cancellation cuts
// the wait short.
func (r Runner) Run(ctx context.Context, tr *Tracker) error {
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	baseDelay := r.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		tr.attempt = attempt

		lastErr = r.runOnce(ctx, tr)
		if lastErr == nil {
			tr.Enter(PhaseComplete)
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		if attempt == maxAttempts {
			break
		}

		tr.Enter(PhaseRetrying)
		if err := sleep(ctx, baseDelay*time.Duration(attempt)); err != nil {
			lastErr = err
			break
		}
	}

	tr.Enter(PhaseError)
	return fmt.Errorf("handshake failed after %d attempts: %w", tr.attempt, lastErr)
}

func (r Runner) runOnce(ctx context.Context, tr *Tracker) error {
	steps := []struct {
		phase Phase
		run   Step
	}{
		{PhaseConnecting, r.Connect},
		{PhaseVerifying, r.Verify},
		{PhaseSyncing, r.Sync},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		tr.Enter(s.phase)
		if s.run == nil {
			continue
		}
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.phase, err)
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
