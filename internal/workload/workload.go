// Package workload supplies each arriving packet's timing descriptor,
// either synthesized from the deterministic l/P/m parameters or read
// from a trace file, mirroring the branch in
// _examples/original_source/qdisc.c's packet_thread_func that tests
// `if (!*buf)` before either using l/P/m directly or calling ReadLine.
package workload

import (
	"github.com/sahota/qdisc-sim/internal/tsfile"
)

// Descriptor is one packet's timing triple, in milliseconds.
type Descriptor struct {
	InterArrivalMS int64
	TokensRequired int64
	ServiceMS      int64
}

// Source yields one Descriptor per packet, in arrival order.
type Source interface {
	// Next returns the descriptor for the packetNum'th packet
	// (1-based). packetNum only matters to trace-driven sources, which
	// use it to report accurate line numbers on malformed input.
	Next(packetNum int64) (Descriptor, error)
}

// Deterministic returns the same l/P/m triple for every packet, as the
// original program does when no tsfile is given.
type Deterministic struct {
	InterArrivalMS int64
	TokensRequired int64
	ServiceMS      int64
}

func (d Deterministic) Next(packetNum int64) (Descriptor, error) {
	return Descriptor{
		InterArrivalMS: d.InterArrivalMS,
		TokensRequired: d.TokensRequired,
		ServiceMS:      d.ServiceMS,
	}, nil
}

// Traced reads descriptors from a trace file, one per packet, in order.
type Traced struct {
	r *tsfile.Reader
}

// NewTraced wraps an already-opened trace file reader whose header line
// has already been consumed by the caller (main needs the header's
// packet count before it knows how many packets to expect).
func NewTraced(r *tsfile.Reader) *Traced {
	return &Traced{r: r}
}

func (t *Traced) Next(packetNum int64) (Descriptor, error) {
	d, err := t.r.ReadDescriptor(packetNum)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		InterArrivalMS: d.InterArrivalMS,
		TokensRequired: d.TokensRequired,
		ServiceMS:      d.ServiceMS,
	}, nil
}
