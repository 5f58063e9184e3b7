// Package simstate holds the shared state guarded by a single
// mutex/condition-variable pair: the two queues, the token bucket, the
// termination flags, and the running statistics. It mirrors the global
// variables and the CheckQ1/TokenArrives/CheckQ2/DepartService/SigQuit
// routines of the original C emulator, translated into methods that
// mutate a single struct instead of file-scope globals.
//
// Every exported method below documents whether it requires the
// caller to already hold the lock; State intentionally does not lock
// around individual field reads the way a general-purpose concurrent
// map would: the concurrency model here is one mutex and one condition
// variable held across whole multi-step operations, not per-field
// synchronization.
package simstate

import (
	"sync"
	"time"

	"github.com/sahota/qdisc-sim/internal/dlist"
)

// State is the emulation's shared state. Zero value is not usable;
// construct with New.
type State struct {
	mu   sync.Mutex
	cond *sync.Cond

	Q1 *dlist.List[*Packet]
	Q2 *dlist.List[*Packet]

	TokenBucket    int64
	BucketCapacity int64

	AllPacketsArrived bool
	TimeToQuit        bool

	CompletedPackets int64
	DroppedPackets   int64
	RemovedPackets   int64
	AcceptedTokens   int64
	DroppedTokens    int64

	// PacketsArrived is the packet-source's own arrival counter (the
	// original's p_num), used as the denominator for the
	// inter-arrival running mean.
	PacketsArrived    int64
	AvgInterArrivalUS int64

	AvgServiceTimeUS int64

	TotalQ1TimeUS int64
	TotalQ2TimeUS int64
	TotalS1TimeUS int64
	TotalS2TimeUS int64

	AvgXMS     float64
	AvgXSqrMS2 float64
}

// New builds an empty State with the given token-bucket capacity.
func New(bucketCapacity int64) *State {
	s := &State{
		Q1:             dlist.New[*Packet](),
		Q2:             dlist.New[*Packet](),
		BucketCapacity: bucketCapacity,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Lock and Unlock expose the single mutex guarding every field above.
func (s *State) Lock()   { s.mu.Lock() }
func (s *State) Unlock() { s.mu.Unlock() }

// Wait blocks on the condition variable; the caller must hold the
// lock, and Wait releases and reacquires it the usual sync.Cond way.
// Callers must re-check their wait predicate in a loop: Wait tolerates
// spurious wakeups, it does not filter them.
func (s *State) Wait() { s.cond.Wait() }

// Broadcast wakes every waiter; the caller must hold the lock.
func (s *State) Broadcast() { s.cond.Broadcast() }

// Q1Empty and Q2Empty require the lock held.
func (s *State) Q1Empty() bool { return s.Q1.Empty() }
func (s *State) Q2Empty() bool { return s.Q2.Empty() }

// EnqueueQ1 appends p to Q1 and stamps its queue-entry time, mirroring
// PacketEntersQ1. Requires the lock held.
func (s *State) EnqueueQ1(p *Packet, now time.Duration) {
	p.EnterTime = now
	s.Q1.PushBack(p)
}

// RecordInterArrival folds a newly measured inter-arrival gap into the
// running mean, mirroring the packet thread's
// `avg_inter_arrival_time = (avg*(p_num-1) + diff) / p_num` update.
// Requires the lock held.
func (s *State) RecordInterArrival(diffUS int64) {
	s.PacketsArrived++
	s.AvgInterArrivalUS = (s.AvgInterArrivalUS*(s.PacketsArrived-1) + diffUS) / s.PacketsArrived
}

// DropPacket records a capacity-exceeded packet (tokens_required > B),
// mirroring the `++dropped_packets` branch. Requires the lock held.
func (s *State) DropPacket() {
	s.DroppedPackets++
}

// TryAdmitFromQ1 mirrors CheckQ1 fused with PacketLeavesQ1 and
// PacketEntersQ2: if Q1's head packet's token requirement can be met
// from the bucket, it is moved to Q2 and ok is true, with
// q1OccupancyUS reporting how long it waited in Q1. If Q1 is empty or
// the head cannot yet be admitted, ok is false and the queue is
// untouched. Requires the lock held.
func (s *State) TryAdmitFromQ1(now time.Duration) (p *Packet, q1OccupancyUS int64, ok bool) {
	if s.Q1.Empty() {
		return nil, 0, false
	}
	front := s.Q1.Front()
	head := front.Value
	if s.TokenBucket < head.TokensRequired {
		return nil, 0, false
	}
	s.TokenBucket -= head.TokensRequired
	s.Q1.Remove(front)

	q1OccupancyUS = int64(now - head.EnterTime)
	s.TotalQ1TimeUS += q1OccupancyUS
	head.LeaveTime = now

	head.EnterTime = now
	s.Q2.PushBack(head)

	return head, q1OccupancyUS, true
}

// OfferToken mirrors TokenArrives: a token is accepted if the bucket
// has spare capacity, otherwise it is dropped. bucketLevel reports the
// resulting occupancy. Requires the lock held.
func (s *State) OfferToken() (accepted bool, bucketLevel int64) {
	if s.TokenBucket < s.BucketCapacity {
		s.TokenBucket++
		s.AcceptedTokens++
		return true, s.TokenBucket
	}
	s.DroppedTokens++
	return false, s.TokenBucket
}

// PopQ2 mirrors CheckQ2 fused with PacketLeavesQ2: it removes and
// returns Q2's head, recording how long it waited in Q2. Requires the
// lock held and Q2 non-empty.
func (s *State) PopQ2(now time.Duration) (p *Packet, q2OccupancyUS int64) {
	front := s.Q2.Front()
	p = front.Value
	s.Q2.Remove(front)

	q2OccupancyUS = int64(now - p.EnterTime)
	s.TotalQ2TimeUS += q2OccupancyUS
	p.LeaveTime = now
	return p, q2OccupancyUS
}

// BeginService stamps a packet's service-entry time, mirroring
// BeginService. Requires the lock held.
func (s *State) BeginService(p *Packet, now time.Duration) {
	p.EnterTime = now
}

// RecordDeparture mirrors DepartService: it folds the measured service
// time into the per-server running sum and the overall incremental
// mean, folds the packet's total sojourn time into avg_x/avg_x_sqr,
// and increments CompletedPackets — in that order, using the
// pre-increment count as the averaging denominator, matching the
// original's "multiply by old count, then increment" sequencing
// exactly. Requires the lock held.
func (s *State) RecordDeparture(p *Packet, serverNum int, now time.Duration) (serviceUS, timeInSystemUS int64) {
	serviceUS = int64(now - p.EnterTime)
	if serverNum == 1 {
		s.TotalS1TimeUS += serviceUS
	} else {
		s.TotalS2TimeUS += serviceUS
	}
	s.AvgServiceTimeUS = (s.AvgServiceTimeUS*s.CompletedPackets + serviceUS) / (s.CompletedPackets + 1)

	timeInSystemUS = int64(now - p.ArrivalTime)
	timeInSystemMS := float64(timeInSystemUS) / 1000.0
	s.AvgXMS = (s.AvgXMS*float64(s.CompletedPackets) + timeInSystemMS) / float64(s.CompletedPackets+1)
	s.AvgXSqrMS2 = (s.AvgXSqrMS2*float64(s.CompletedPackets) + timeInSystemMS*timeInSystemMS) / float64(s.CompletedPackets+1)

	s.CompletedPackets++
	p.LeaveTime = now
	return serviceUS, timeInSystemUS
}

// DrainQ1 and DrainQ2 empty their queue, incrementing RemovedPackets
// once per packet removed, mirroring SigQuit's two drain loops. Both
// are idempotent: calling either again on an already-empty queue
// returns nil and changes nothing. Requires the lock held.
func (s *State) DrainQ1() []*Packet { return s.drain(s.Q1) }
func (s *State) DrainQ2() []*Packet { return s.drain(s.Q2) }

func (s *State) drain(q *dlist.List[*Packet]) []*Packet {
	var removed []*Packet
	for !q.Empty() {
		front := q.Front()
		p := front.Value
		q.Remove(front)
		s.RemovedPackets++
		removed = append(removed, p)
	}
	return removed
}

// Snapshot is a point-in-time copy of the statistics-relevant fields,
// taken under the lock so the stats package can derive the final
// report without racing the engine's goroutines.
type Snapshot struct {
	CompletedPackets int64
	DroppedPackets   int64
	RemovedPackets   int64
	AcceptedTokens   int64
	DroppedTokens    int64

	PacketsArrived    int64
	AvgInterArrivalUS int64
	AvgServiceTimeUS  int64

	TotalQ1TimeUS int64
	TotalQ2TimeUS int64
	TotalS1TimeUS int64
	TotalS2TimeUS int64

	AvgXMS     float64
	AvgXSqrMS2 float64
}

// Snapshot copies the current statistics fields under the lock.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		CompletedPackets:  s.CompletedPackets,
		DroppedPackets:    s.DroppedPackets,
		RemovedPackets:    s.RemovedPackets,
		AcceptedTokens:    s.AcceptedTokens,
		DroppedTokens:     s.DroppedTokens,
		PacketsArrived:    s.PacketsArrived,
		AvgInterArrivalUS: s.AvgInterArrivalUS,
		AvgServiceTimeUS:  s.AvgServiceTimeUS,
		TotalQ1TimeUS:     s.TotalQ1TimeUS,
		TotalQ2TimeUS:     s.TotalQ2TimeUS,
		TotalS1TimeUS:     s.TotalS1TimeUS,
		TotalS2TimeUS:     s.TotalS2TimeUS,
		AvgXMS:            s.AvgXMS,
		AvgXSqrMS2:        s.AvgXSqrMS2,
	}
}
