package engine

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sahota/qdisc-sim/internal/eventlog"
	"github.com/sahota/qdisc-sim/internal/simclock"
	"github.com/sahota/qdisc-sim/internal/simstate"
	"github.com/sahota/qdisc-sim/internal/workload"
)

// Config bundles the parameters Run needs beyond the collaborators it
// is handed directly: the packet count, the token-bucket capacity, and
// the token inter-arrival period.
type Config struct {
	N              int64
	BucketCapacity int64
	TokenPeriodMS  int64
}

// Run drives one full emulation: it starts the packet source, token
// source, both servers, and the signal monitor, and blocks until the
// four worker activities finish — either by natural completion (every
// packet arrived, Q1 and Q2 drained) or by the interrupted-shutdown
// path (SIGINT observed, queues drained instead of serviced). It
// mirrors Process()'s pthread_create/pthread_join sequence, replacing
// pthread_cancel with context cancellation and a signal-handling
// goroutine in the same shape used for graceful shutdown elsewhere.
//
// The returned error is the first non-nil error any of the packet or
// token source returned (a workload error, e.g. a malformed or
// truncated trace file); it is nil on both natural completion and
// signal-driven shutdown.
func Run(ctx context.Context, clock *simclock.Clock, log *eventlog.Log, st *simstate.State, src workload.Source, cfg Config) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go RunSignalMonitor(runCtx, cancel, sigCh, clock, log, st)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	record := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		// A fatal workload error (e.g. a malformed trace file) leaves
		// the servers waiting on work that will never arrive; drive
		// them through the same drain-and-exit path SIGINT does so
		// Run can still return once every activity has stopped.
		st.Lock()
		st.TimeToQuit = true
		st.Broadcast()
		st.Unlock()
		cancel()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		record(RunPacketSource(runCtx, clock, log, st, src, cfg.N, cfg.BucketCapacity))
	}()
	go func() {
		defer wg.Done()
		record(RunTokenSource(runCtx, clock, log, st, cfg.TokenPeriodMS))
	}()
	go func() {
		defer wg.Done()
		record(RunServer(clock, log, st, 1))
	}()
	go func() {
		defer wg.Done()
		record(RunServer(clock, log, st, 2))
	}()
	wg.Wait()

	return firstErr
}
