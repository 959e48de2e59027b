package command

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pkt.systems/agentnexus/internal/ansi"
	"pkt.systems/agentnexus/internal/termio"
	"pkt.systems/agentnexus/schema"
)

// DefaultSpinnerInterval is the frame period of the spinner.
const DefaultSpinnerInterval = schema.DefaultSpinnerInterval

var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

var (
	successMark = "\b" + ansi.Paint(ansi.Success, "✔")
	failureMark = "\b" + ansi.Paint(ansi.Error, "✖")
)

// Ticker is the subset of time.Ticker the spinner needs.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) Chan() <-chan time.Time { return t.C }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Spinner animates a single terminal cell while an action runs.
type Spinner struct {
	Interval  time.Duration
	NewTicker func(time.Duration) Ticker
}

// RunWithSpinner runs action under a spinner with the default interval.
func RunWithSpinner(ctx context.Context, out termio.Surface, message string, action func(context.Context) error) error {
	return Spinner{}.Run(ctx, out, message, action)
}

// Run writes message, animates the cell after it until action returns, then
// replaces the cell with a success or failure mark. The action's error is
// returned unchanged. A panicking action leaves the failure mark and the panic
// continues.
func (sp Spinner) Run(ctx context.Context, out termio.Surface, message string, action func(context.Context) error) error {
	interval := sp.Interval
	if interval <= 0 {
		interval = DefaultSpinnerInterval
	}
	newTicker := sp.NewTicker
	if newTicker == nil {
		newTicker = newTimeTicker
	}

	out.Write(message + " ")
	ticker := newTicker(interval)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		frame := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.Chan():
				out.Write("\b" + string(spinnerFrames[frame]))
				frame = (frame + 1) % len(spinnerFrames)
			}
		}
	}()

	var stopped atomic.Bool
	stop := func() {
		if stopped.Swap(true) {
			return
		}
		ticker.Stop()
		close(done)
		wg.Wait()
	}

	finished := false
	defer func() {
		if finished {
			return
		}
		stop()
		out.Writeln(failureMark)
	}()
	err := runAction(ctx, action)
	finished = true
	stop()
	if err != nil {
		out.Writeln(failureMark)
		return err
	}
	out.Writeln(successMark)
	return nil
}

func runAction(ctx context.Context, action func(context.Context) error) error {
	if action == nil {
		return fmt.Errorf("spinner: nil action")
	}
	return action(ctx)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
