// Package qparams is the CLI and trace-file parameter collaborator:
// it parses commandline arguments into an immutable Parameters record
// and prints the "Emulation Parameters" banner.
package qparams

import (
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
)

// MaxTimeMS is the clamp applied to every millisecond period (l, r, m).
const MaxTimeMS = 10000

// Default parameter values used when no commandline flag or config
// file overrides them.
const (
	DefaultN      = 20
	DefaultLambda = 1.0
	DefaultMu     = 0.35
	DefaultRate   = 1.5
	DefaultB      = 10
	DefaultP      = 3
)

// Parameters is the immutable-after-startup parameter record for one
// emulation run.
type Parameters struct {
	N      int64
	Lambda float64 // events/sec, as given (for display)
	Mu     float64
	Rate   float64
	B      int64
	P      int64

	// L, M, R are the millisecond periods derived from Lambda/Mu/Rate,
	// each clamped to MaxTimeMS.
	L int64
	M int64
	R int64

	// TSFile is the trace file path, or "" for deterministic mode.
	TSFile string

	// RunID tags this invocation for log correlation.
	RunID string

	// TSDigest is the BLAKE2b-256 hex digest of the trace file's
	// contents, set by the caller after reading it. Empty in
	// deterministic mode.
	TSDigest string

	// LogLevel is the requested operator-log verbosity.
	LogLevel string
}

// Deterministic reports whether this run uses the deterministic
// workload (no trace file given).
func (p *Parameters) Deterministic() bool { return p.TSFile == "" }

// Defaults returns a Parameters populated with the built-in default
// values and a freshly generated run ID.
func Defaults() *Parameters {
	p := &Parameters{
		N:      DefaultN,
		Lambda: DefaultLambda,
		Mu:     DefaultMu,
		Rate:   DefaultRate,
		B:      DefaultB,
		P:      DefaultP,
		RunID:  uuid.NewString(),
	}
	p.convert()
	return p
}

// convert derives L, M, R (milliseconds) from Lambda, Mu, Rate
// (events/sec), rounding to the nearest millisecond and clamping to
// MaxTimeMS.
//
// A non-positive rate yields an undefined period in the original C
// program (round(1000/0) is IEEE infinity, cast to unsigned long is
// undefined behavior); this rewrite clamps such a period to MaxTimeMS
// rather than propagate an infinity or negative value, so a
// non-positive rate warns and continues instead of crashing.
func (p *Parameters) convert() {
	p.L = ratePeriodMS(p.Lambda)
	p.M = ratePeriodMS(p.Mu)
	p.R = ratePeriodMS(p.Rate)
}

func ratePeriodMS(rate float64) int64 {
	if rate <= 0 || math.IsNaN(rate) {
		return MaxTimeMS
	}
	period := math.Round(1000.0 / rate)
	if period > MaxTimeMS || math.IsInf(period, 1) {
		return MaxTimeMS
	}
	if period < 0 {
		return MaxTimeMS
	}
	return int64(period)
}

// PrintParams writes the "Emulation Parameters" banner to w: lambda,
// mu, and P are shown only in deterministic mode; r, B, and (when set)
// tsfile are always shown. The run_id and (trace mode only)
// tsfile_digest lines are appended after those.
func PrintParams(w io.Writer, p *Parameters) {
	fmt.Fprintf(w, "Emulation Parameters:\n")
	fmt.Fprintf(w, "\tnumber to arrive = %d\n", p.N)
	if p.Deterministic() {
		fmt.Fprintf(w, "\tlambda = %s\n", formatG(p.Lambda))
		fmt.Fprintf(w, "\tmu = %s\n", formatG(p.Mu))
	}
	fmt.Fprintf(w, "\tr = %s\n", formatG(p.Rate))
	fmt.Fprintf(w, "\tB = %d\n", p.B)
	if p.Deterministic() {
		fmt.Fprintf(w, "\tP = %d\n", p.P)
	}
	if !p.Deterministic() {
		fmt.Fprintf(w, "\ttsfile = %s\n", p.TSFile)
	}
	fmt.Fprintf(w, "\trun_id = %s\n", p.RunID)
	if p.TSDigest != "" {
		fmt.Fprintf(w, "\ttsfile_digest = %s\n", p.TSDigest)
	}
	fmt.Fprintf(w, "\n")
}

// formatG renders a float the way C's "%.6g" would for the small,
// human-scale rates this simulator deals with.
func formatG(v float64) string {
	s := fmt.Sprintf("%.6g", v)
	return s
}
