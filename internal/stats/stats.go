// Package stats derives and prints the end-of-run statistics report: a
// labelled block of mean occupancies, service-time and sojourn-time
// statistics, and drop probabilities. The averages and drop
// probabilities fall back to a stated "N/A" reason when their
// denominator is empty; the mean occupancies print 0, not "N/A", when
// the emulation duration is zero.
package stats

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sahota/qdisc-sim/internal/simstate"
)

// Report holds everything needed to print the statistics block:
// the final counters snapshot plus the measured emulation duration.
type Report struct {
	Snapshot          simstate.Snapshot
	EmulationDuration time.Duration
}

// Print writes the "Statistics:" block to w, matching
// PrintStatistics's layout and "%.6g" formatting exactly, one section
// at a time.
func Print(w io.Writer, r Report) {
	s := r.Snapshot

	fmt.Fprintf(w, "Statistics:\n\n")

	if s.PacketsArrived == 0 {
		fmt.Fprintf(w, "\taverage packet inter-arrival time = \"N/A\" no packet arrived\n")
	} else {
		fmt.Fprintf(w, "\taverage packet inter-arrival time = %s\n", formatG(float64(s.AvgInterArrivalUS)/1e6))
	}
	if s.CompletedPackets == 0 {
		fmt.Fprintf(w, "\taverage packet service time = \"N/A\" no packet served\n")
	} else {
		fmt.Fprintf(w, "\taverage packet service time = %s\n", formatG(float64(s.AvgServiceTimeUS)/1e6))
	}
	fmt.Fprintf(w, "\n")

	denom := float64(r.EmulationDuration.Microseconds())
	fmt.Fprintf(w, "\taverage number of packets in Q1 = %s\n", formatG(meanOccupancy(s.TotalQ1TimeUS, denom)))
	fmt.Fprintf(w, "\taverage number of packets in Q2 = %s\n", formatG(meanOccupancy(s.TotalQ2TimeUS, denom)))
	fmt.Fprintf(w, "\taverage number of packets in S1 = %s\n", formatG(meanOccupancy(s.TotalS1TimeUS, denom)))
	fmt.Fprintf(w, "\taverage number of packets in S2 = %s\n", formatG(meanOccupancy(s.TotalS2TimeUS, denom)))
	fmt.Fprintf(w, "\n")

	if s.CompletedPackets == 0 {
		fmt.Fprintf(w, "\taverage time a packet spent in system = \"N/A\" no packet served\n")
		fmt.Fprintf(w, "\tstandard deviation for time spent in system = \"N/A\" no packet served\n")
	} else {
		fmt.Fprintf(w, "\taverage time a packet spent in system = %s\n", formatG(s.AvgXMS/1000.0))
		variance := s.AvgXSqrMS2 - s.AvgXMS*s.AvgXMS
		if variance < 0 {
			variance = 0
		}
		fmt.Fprintf(w, "\tstandard deviation for time spent in system = %s\n", formatG(math.Sqrt(variance)/1000.0))
	}
	fmt.Fprintf(w, "\n")

	if s.DroppedTokens+s.AcceptedTokens == 0 {
		fmt.Fprintf(w, "\ttoken drop probability = \"N/A\" no token arrived\n")
	} else {
		fmt.Fprintf(w, "\ttoken drop probability = %s\n",
			formatG(float64(s.DroppedTokens)/float64(s.DroppedTokens+s.AcceptedTokens)))
	}
	if s.DroppedPackets+s.CompletedPackets+s.RemovedPackets == 0 {
		fmt.Fprintf(w, "\tpacket drop probability = \"N/A\" no packet arrived\n")
	} else {
		fmt.Fprintf(w, "\tpacket drop probability = %s\n",
			formatG(float64(s.DroppedPackets)/float64(s.DroppedPackets+s.CompletedPackets+s.RemovedPackets)))
	}
}

// PrintTrailer writes a non-protocol, human-readable summary line
// after the statistics block — never parsed by anything, purely an
// operator convenience.
func PrintTrailer(w io.Writer, r Report) {
	s := r.Snapshot
	fmt.Fprintf(w, "\n%s packets completed, %s dropped, over %s\n",
		humanize.Comma(s.CompletedPackets),
		humanize.Comma(s.DroppedPackets),
		r.EmulationDuration.Round(time.Millisecond),
	)
}

func meanOccupancy(totalUS int64, denomUS float64) float64 {
	if denomUS == 0 {
		return 0
	}
	return float64(totalUS) / denomUS
}

func formatG(v float64) string {
	return fmt.Sprintf("%.6g", v)
}
