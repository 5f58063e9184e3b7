// Package engine runs the four cooperating activities — packet
// source, token source, and two servers — plus the signal monitor
// that drives the interrupted-shutdown path. Every activity is
// grounded line-for-line on the original C emulator's
// packet_thread_func, token_thread_func, server_thread_func, and
// monitor, translated from POSIX threads + pthread_cancel into
// goroutines synchronized by simstate.State's mutex/condition-variable
// pair and cancelled cooperatively via context.Context.
package engine

import (
	"context"
	"os"
	"time"

	"github.com/sahota/qdisc-sim/internal/eventlog"
	"github.com/sahota/qdisc-sim/internal/simclock"
	"github.com/sahota/qdisc-sim/internal/simstate"
	"github.com/sahota/qdisc-sim/internal/workload"
)

// emitQ1Leave prints the combined "leaves Q1 / bucket level" line
// shared by CheckQ1's two callers (a packet's own arrival promoting an
// empty Q1, and a later token arrival promoting a queued head).
func emitQ1Leave(log *eventlog.Log, now time.Duration, packetNum int64, occupancyUS, bucketLevel int64) {
	log.Emit(now, "p%d leaves Q1, time in Q1 = %s, token bucket now has %d %s",
		packetNum, formatMS(occupancyUS), bucketLevel, tokenWord(bucketLevel))
}

// RunPacketSource admits up to n packets, pacing each by its
// descriptor's inter-arrival time, and promotes a newly arrived
// packet out of Q1 immediately when it becomes Q1's only occupant —
// mirroring packet_thread_func's `if (MyListLength(&Q1) == 1)
// CheckQ1();`. It returns the first workload error encountered. It
// returns nil after exhausting n packets, having set AllPacketsArrived
// and broadcast to signal natural completion; it also returns nil,
// without setting AllPacketsArrived, when ctx is cancelled or
// TimeToQuit is set.
func RunPacketSource(ctx context.Context, clock *simclock.Clock, log *eventlog.Log, st *simstate.State, src workload.Source, n, bucketCapacity int64) error {
	lastArrivalTime := time.Duration(0)

	for pktNum := int64(1); pktNum <= n; pktNum++ {
		desc, err := src.Next(pktNum)
		if err != nil {
			return err
		}

		target := lastArrivalTime + time.Duration(desc.InterArrivalMS)*time.Millisecond
		if !clock.SleepUntil(ctx, target) {
			return nil
		}

		st.Lock()
		if st.TimeToQuit {
			st.Unlock()
			return nil
		}

		now := clock.Now()
		diffUS := int64(now - lastArrivalTime)
		lastArrivalTime = now
		st.RecordInterArrival(diffUS)

		if desc.TokensRequired > bucketCapacity {
			st.DropPacket()
			log.Emit(now, "p%d arrives, needs %d tokens, inter-arrival time = %s, dropped",
				pktNum, desc.TokensRequired, formatMS(diffUS))
			st.Unlock()
			continue
		}

		log.Emit(now, "p%d arrives, needs %d tokens, inter-arrival time = %s",
			pktNum, desc.TokensRequired, formatMS(diffUS))

		packet := &simstate.Packet{
			Num:            pktNum,
			TokensRequired: desc.TokensRequired,
			ServiceMS:      desc.ServiceMS,
			ArrivalTime:    now,
		}
		packet.MeasuredInterArrivalUS = diffUS
		st.EnqueueQ1(packet, now)
		log.Emit(now, "p%d enters Q1", pktNum)

		if st.Q1.Len() == 1 {
			if p, occ, ok := st.TryAdmitFromQ1(now); ok {
				emitQ1Leave(log, now, p.Num, occ, st.TokenBucket)
				log.Emit(now, "p%d enters Q2", p.Num)
				st.Broadcast()
			}
		}
		st.Unlock()
	}

	st.Lock()
	st.AllPacketsArrived = true
	st.Broadcast()
	st.Unlock()
	return nil
}

// RunTokenSource offers one token per periodMS until every packet has
// arrived and Q1 has drained, promoting Q1's head whenever a token
// arrival makes that possible — mirroring token_thread_func.
func RunTokenSource(ctx context.Context, clock *simclock.Clock, log *eventlog.Log, st *simstate.State, periodMS int64) error {
	tNum := int64(0)
	lastTokenTime := time.Duration(0)

	for {
		st.Lock()
		exhausted := st.AllPacketsArrived && st.Q1Empty()
		st.Unlock()
		if exhausted {
			break
		}

		tNum++
		target := lastTokenTime + time.Duration(periodMS)*time.Millisecond
		if !clock.SleepUntil(ctx, target) {
			return nil
		}

		st.Lock()
		if st.TimeToQuit {
			st.Unlock()
			return nil
		}
		if st.AllPacketsArrived && st.Q1Empty() {
			st.Unlock()
			break
		}

		now := clock.Now()
		lastTokenTime = now

		accepted, level := st.OfferToken()
		if accepted {
			log.Emit(now, "token t%d arrives, token bucket now has %d %s", tNum, level, tokenWord(level))
		} else {
			log.Emit(now, "token t%d arrives, dropped", tNum)
		}

		if !st.Q1Empty() {
			if p, occ, ok := st.TryAdmitFromQ1(now); ok {
				emitQ1Leave(log, now, p.Num, occ, st.TokenBucket)
				log.Emit(now, "p%d enters Q2", p.Num)
				st.Broadcast()
			}
		}
		st.Unlock()
	}

	st.Lock()
	st.Broadcast()
	st.Unlock()
	return nil
}

// RunServer repeatedly waits for Q2 work (or a reason to stop),
// services one packet at a time without holding the lock during the
// simulated service delay, and performs the shutdown drain if it is
// the server that observes TimeToQuit first — mirroring
// server_thread_func and SigQuit. Servers are never cancelled via ctx;
// the original never calls pthread_cancel on a server thread, so a
// service already underway always runs to completion even after
// SIGINT.
func RunServer(clock *simclock.Clock, log *eventlog.Log, st *simstate.State, serverNum int) error {
	for {
		st.Lock()
		for !st.TimeToQuit && st.Q2Empty() && (!st.Q1Empty() || !st.AllPacketsArrived) {
			st.Wait()
		}

		if st.TimeToQuit {
			st.Broadcast()
			drainOnQuit(clock, log, st)
			st.Unlock()
			return nil
		}
		if st.AllPacketsArrived && st.Q1Empty() && st.Q2Empty() {
			st.Broadcast()
			st.Unlock()
			return nil
		}

		now := clock.Now()
		p, occ := st.PopQ2(now)
		log.Emit(now, "p%d leaves Q2, time in Q2 = %s", p.Num, formatMS(occ))
		st.BeginService(p, now)
		log.Emit(now, "p%d begins service at S%d, requesting %dms of service", p.Num, serverNum, p.ServiceMS)
		st.Unlock()

		target := p.EnterTime + time.Duration(p.ServiceMS)*time.Millisecond
		clock.SleepUntil(context.Background(), target)

		st.Lock()
		now = clock.Now()
		serviceUS, sojournUS := st.RecordDeparture(p, serverNum, now)
		log.Emit(now, "p%d departs from S%d, service time = %s, time in system = %s",
			p.Num, serverNum, formatMS(serviceUS), formatMS(sojournUS))
		st.Unlock()
	}
}

// drainOnQuit mirrors SigQuit: it empties Q1 then Q2, logging one
// "removed" line per packet. Requires the lock held; idempotent
// because simstate.State.DrainQ1/DrainQ2 are.
func drainOnQuit(clock *simclock.Clock, log *eventlog.Log, st *simstate.State) {
	for _, p := range st.DrainQ1() {
		log.Emit(clock.Now(), "p%d removed from Q1", p.Num)
	}
	for _, p := range st.DrainQ2() {
		log.Emit(clock.Now(), "p%d removed from Q2", p.Num)
	}
}

// RunSignalMonitor waits for an OS signal (or ctx cancellation, which
// means the emulation already finished naturally) and, on signal, sets
// TimeToQuit, cancels ctx so the packet and token sources unblock out
// of their pacing sleeps, and logs the caught-signal line — all inside
// one critical section, mirroring monitor's single locked region.
func RunSignalMonitor(ctx context.Context, cancel context.CancelFunc, sigCh <-chan os.Signal, clock *simclock.Clock, log *eventlog.Log, st *simstate.State) {
	select {
	case <-sigCh:
	case <-ctx.Done():
		return
	}

	st.Lock()
	st.TimeToQuit = true
	cancel()
	log.Emit(clock.Now(), "SIGINT caught, no new packets or tokens will be allowed")
	st.Broadcast()
	st.Unlock()
}
