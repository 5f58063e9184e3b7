package simstate

import "time"

// Packet is one unit of traffic moving through Q1, the token-bucket
// gate, Q2, and a server, grounded on
// _examples/original_source/qdisc.c's "Packet" struct.
type Packet struct {
	Num int64

	// TokensRequired and ServiceMS are the descriptor values the
	// workload source supplied for this packet.
	TokensRequired int64
	ServiceMS      int64

	// ArrivalTime is when the packet source admitted this packet.
	ArrivalTime time.Duration
	// EnterTime is when the packet most recently entered a queue or
	// began service; reused across Q1, Q2, and the server stage the
	// same way the original reuses packet->enter_time.
	EnterTime time.Duration
	// LeaveTime is when the packet most recently left a queue or
	// finished service.
	LeaveTime time.Duration

	// MeasuredInterArrivalUS is the actual elapsed time since the
	// previous packet's arrival, measured at admission time (this may
	// differ from the descriptor's requested InterArrivalMS under
	// scheduler jitter). It is the same gap the packet source passes to
	// State.RecordInterArrival for the inter-arrival running mean.
	MeasuredInterArrivalUS int64
}
