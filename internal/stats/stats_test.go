package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/sahota/qdisc-sim/internal/simstate"
)

func TestPrintAllNAWhenNothingHappened(t *testing.T) {
	var b strings.Builder
	Print(&b, Report{Snapshot: simstate.Snapshot{}, EmulationDuration: time.Second})
	out := b.String()

	for _, want := range []string{
		`average packet inter-arrival time = "N/A" no packet arrived`,
		`average packet service time = "N/A" no packet served`,
		`average time a packet spent in system = "N/A" no packet served`,
		`standard deviation for time spent in system = "N/A" no packet served`,
		`token drop probability = "N/A" no token arrived`,
		`packet drop probability = "N/A" no packet arrived`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Print() missing %q; got:\n%s", want, out)
		}
	}
}

func TestPrintComputesMeanOccupancyFromEmulationDuration(t *testing.T) {
	var b strings.Builder
	snap := simstate.Snapshot{TotalQ1TimeUS: 500_000}
	Print(&b, Report{Snapshot: snap, EmulationDuration: time.Second})
	out := b.String()

	if !strings.Contains(out, "average number of packets in Q1 = 0.5\n") {
		t.Errorf("Print() missing expected Q1 occupancy; got:\n%s", out)
	}
}

func TestPrintComputesServiceAndSojournStats(t *testing.T) {
	var b strings.Builder
	snap := simstate.Snapshot{
		CompletedPackets:  4,
		PacketsArrived:    4,
		AvgInterArrivalUS: 2_000_000,
		AvgServiceTimeUS:  500_000,
		AvgXMS:            750,
		AvgXSqrMS2:        750*750 + 100, // variance = 100
	}
	Print(&b, Report{Snapshot: snap, EmulationDuration: 10 * time.Second})
	out := b.String()

	if !strings.Contains(out, "average packet inter-arrival time = 2\n") {
		t.Errorf("Print() missing inter-arrival average; got:\n%s", out)
	}
	if !strings.Contains(out, "average packet service time = 0.5\n") {
		t.Errorf("Print() missing service time average; got:\n%s", out)
	}
	if !strings.Contains(out, "average time a packet spent in system = 0.75\n") {
		t.Errorf("Print() missing sojourn average; got:\n%s", out)
	}
	if !strings.Contains(out, "standard deviation for time spent in system = 0.01\n") {
		t.Errorf("Print() missing sojourn stddev; got:\n%s", out)
	}
}

func TestPrintDropProbabilities(t *testing.T) {
	var b strings.Builder
	snap := simstate.Snapshot{
		DroppedTokens:    1,
		AcceptedTokens:   3,
		DroppedPackets:   1,
		CompletedPackets: 3,
		RemovedPackets:   0,
	}
	Print(&b, Report{Snapshot: snap, EmulationDuration: time.Second})
	out := b.String()

	if !strings.Contains(out, "token drop probability = 0.25\n") {
		t.Errorf("Print() missing token drop probability; got:\n%s", out)
	}
	if !strings.Contains(out, "packet drop probability = 0.25\n") {
		t.Errorf("Print() missing packet drop probability; got:\n%s", out)
	}
}

func TestPrintTrailerIncludesCounts(t *testing.T) {
	var b strings.Builder
	snap := simstate.Snapshot{CompletedPackets: 1234, DroppedPackets: 5}
	PrintTrailer(&b, Report{Snapshot: snap, EmulationDuration: 2500 * time.Millisecond})
	out := b.String()

	if !strings.Contains(out, "1,234 packets completed") {
		t.Errorf("PrintTrailer() missing comma-formatted count; got:\n%s", out)
	}
	if !strings.Contains(out, "5 dropped") {
		t.Errorf("PrintTrailer() missing dropped count; got:\n%s", out)
	}
}
