package workload

import (
	"strings"
	"testing"

	"github.com/sahota/qdisc-sim/internal/tsfile"
)

func TestDeterministicReturnsSameTripleEveryPacket(t *testing.T) {
	d := Deterministic{InterArrivalMS: 1000, TokensRequired: 3, ServiceMS: 350}
	for i := int64(1); i <= 3; i++ {
		got, err := d.Next(i)
		if err != nil {
			t.Fatalf("Next(%d) error = %v", i, err)
		}
		want := Descriptor{InterArrivalMS: 1000, TokensRequired: 3, ServiceMS: 350}
		if got != want {
			t.Fatalf("Next(%d) = %+v, want %+v", i, got, want)
		}
	}
}

func TestTracedReadsDescriptorsInOrder(t *testing.T) {
	r := tsfile.Open([]byte("2\n100 5 200\n150 3 250\n"))
	if _, err := r.ReadHeader(); err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	tr := NewTraced(r)

	d1, err := tr.Next(1)
	if err != nil {
		t.Fatalf("Next(1) error = %v", err)
	}
	if d1 != (Descriptor{InterArrivalMS: 100, TokensRequired: 5, ServiceMS: 200}) {
		t.Fatalf("Next(1) = %+v", d1)
	}

	d2, err := tr.Next(2)
	if err != nil {
		t.Fatalf("Next(2) error = %v", err)
	}
	if d2 != (Descriptor{InterArrivalMS: 150, TokensRequired: 3, ServiceMS: 250}) {
		t.Fatalf("Next(2) = %+v", d2)
	}
}

func TestTracedPropagatesPrematureEOF(t *testing.T) {
	r := tsfile.Open([]byte("2\n100 5 200\n"))
	if _, err := r.ReadHeader(); err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	tr := NewTraced(r)
	if _, err := tr.Next(1); err != nil {
		t.Fatalf("Next(1) error = %v", err)
	}
	_, err := tr.Next(2)
	if err == nil || !strings.Contains(err.Error(), "reached EOF earlier than expected") {
		t.Fatalf("Next(2) error = %v, want premature-EOF error", err)
	}
}
