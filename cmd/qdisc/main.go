// Command qdisc emulates a token-bucket-gated traffic shaper: packets
// arrive (deterministically or from a trace file), wait in Q1 for
// enough tokens to be admitted, queue in Q2, and are serviced by two
// parallel servers. It prints a timestamped event log followed by an
// aggregate statistics report, grounded on
// _examples/original_source/qdisc.c's main()/Process().
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sahota/qdisc-sim/internal/buildinfo"
	"github.com/sahota/qdisc-sim/internal/engine"
	"github.com/sahota/qdisc-sim/internal/eventlog"
	"github.com/sahota/qdisc-sim/internal/obslog"
	"github.com/sahota/qdisc-sim/internal/qparams"
	"github.com/sahota/qdisc-sim/internal/simclock"
	"github.com/sahota/qdisc-sim/internal/simstate"
	"github.com/sahota/qdisc-sim/internal/stats"
	"github.com/sahota/qdisc-sim/internal/tsfile"
	"github.com/sahota/qdisc-sim/internal/workload"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	for _, a := range args {
		if a == "-version" {
			fmt.Fprintln(stdout, buildinfo.String())
			return 0
		}
	}

	base := qparams.Defaults()
	if cfgPath := qparams.ConfigPath(args); cfgPath != "" {
		fd, err := qparams.LoadYAMLDefaults(cfgPath)
		if err != nil {
			fmt.Fprintf(stderr, "error loading -config %s: %v\n", cfgPath, err)
			return 1
		}
		fd.Apply(base)
	}

	p, warnings, err := qparams.ParseArgsFrom(base, args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr, qparams.Usage)
		return 1
	}

	level, err := obslog.ParseLevel(p.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := obslog.New(stderr, level)
	logger.Info("starting emulation", "run_id", p.RunID)

	for _, w := range warnings {
		fmt.Fprintln(stderr, w.Error())
		logger.Warn("non-positive parameter", "detail", w.Error())
	}

	var src workload.Source
	if p.Deterministic() {
		src = workload.Deterministic{
			InterArrivalMS: p.L,
			TokensRequired: p.P,
			ServiceMS:      p.M,
		}
	} else {
		data, err := os.ReadFile(p.TSFile)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", p.TSFile, err)
			return 1
		}
		tr := tsfile.Open(data)
		p.TSDigest = tr.Digest()
		n, err := tr.ReadHeader()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		p.N = n
		src = workload.NewTraced(tr)
	}

	qparams.PrintParams(stdout, p)

	clock := simclock.New()
	log := eventlog.New(stdout)
	st := simstate.New(p.B)

	log.Emit(clock.Now(), "emulation begins")

	runErr := engine.Run(context.Background(), clock, log, st, src, engine.Config{
		N:              p.N,
		BucketCapacity: p.B,
		TokenPeriodMS:  p.R,
	})
	if runErr != nil {
		fmt.Fprintln(stderr, runErr)
		logger.Error("emulation aborted", "error", runErr)
		return 1
	}

	now := clock.Now()
	log.Emit(now, "emulation ends")
	fmt.Fprintln(stdout)

	report := stats.Report{Snapshot: st.Snapshot(), EmulationDuration: now}
	stats.Print(stdout, report)
	stats.PrintTrailer(stdout, report)

	logger.Info("emulation complete", "run_id", p.RunID, "completed", report.Snapshot.CompletedPackets)
	return 0
}
