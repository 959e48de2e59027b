package command

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pkt.systems/agentnexus/schema"
)

type fakeTicker struct {
	ch    chan time.Time
	stops atomic.Int32
}

func (f *fakeTicker) Chan() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() { f.stops.Add(1) }

type tickerFactory struct {
	mu       sync.Mutex
	tickers  []*fakeTicker
	interval time.Duration
}

func (f *tickerFactory) New(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	f.interval = d
	return t
}

func (f *tickerFactory) Started() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

func (f *tickerFactory) Last() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tickers) == 0 {
		return nil
	}
	return f.tickers[len(f.tickers)-1]
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
	ticks  int
	ticker *tickerFactory
	err    error
}

// sleep delivers the configured number of spinner ticks instead of waiting.
func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	ticks := s.ticks
	err := s.err
	s.mu.Unlock()
	if t := s.ticker.Last(); t != nil {
		for i := 0; i < ticks; i++ {
			t.ch <- time.Now()
		}
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (s *sleepRecorder) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func newTestInterpreter(t *testing.T, cfg Config, provider OrchestrationProvider, exporter Exporter) (*Interpreter, *tickerFactory, *sleepRecorder) {
	t.Helper()
	interp := NewInterpreter(cfg, provider, exporter)
	tickers := &tickerFactory{}
	sleeper := &sleepRecorder{ticker: tickers}
	interp.spinner.NewTicker = tickers.New
	interp.sleep = sleeper.sleep
	return interp, tickers, sleeper
}

type staticProvider struct {
	record schema.Orchestration
	ok     bool
}

func (p staticProvider) LastCompleted() (schema.Orchestration, bool) {
	return p.record, p.ok
}

type fakeExporter struct {
	mu       sync.Mutex
	calls    []string
	location string
	err      error
}

func (f *fakeExporter) Export(_ context.Context, filename string, _ schema.Orchestration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, filename)
	return f.location, f.err
}
