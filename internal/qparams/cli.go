package qparams

import (
	"fmt"
	"strconv"
	"strings"
)

// Usage is the diagnostic usage line, printed alongside every
// malformed-commandline error.
const Usage = "usage: qdisc [-lambda lambda] [-mu mu] [-r r] [-B B] [-P P] [-n num] [-t tsfile] [-config file] [-log-level level] [-version]"

// ParseError is a fatal, user-facing commandline error. The caller
// should print Error() to stderr alongside Usage and exit 1.
type ParseError struct {
	msg string
}

func (e *ParseError) Error() string { return e.msg }

func malformed(detail string) error {
	return &ParseError{msg: "malformed commandline - " + detail}
}

// Warning is a non-fatal diagnostic produced while parsing a
// non-positive numeric parameter; the value is kept and the run
// continues.
type Warning struct {
	msg string
}

func (w Warning) Error() string { return w.msg }

// ParseArgs parses a commandline argument list (excluding argv[0])
// into a Parameters record, starting from Defaults(). Every numeric
// flag requires a following value that does not itself begin with
// "-"; an unknown flag or a bare positional argument is fatal.
//
// Non-positive numeric values are NOT fatal: ParseArgs records a
// Warning and keeps the parsed value rather than rejecting it.
func ParseArgs(args []string) (*Parameters, []Warning, error) {
	return ParseArgsFrom(Defaults(), args)
}

// ParseArgsFrom parses args the same way ParseArgs does, but starting
// from a caller-supplied base (e.g. one seeded from a "-config" YAML
// file via FileDefaults.Apply) instead of the built-in defaults, so
// flags present on the commandline still win.
func ParseArgsFrom(base *Parameters, args []string) (*Parameters, []Warning, error) {
	p := base
	var warnings []Warning

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			return nil, nil, malformed("unknown flag used")
		}

		takeValue := func(name string) (string, error) {
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
				return "", malformed("argument missing for " + name)
			}
			i++
			return args[i], nil
		}

		switch arg {
		case "-lambda":
			v, err := takeValue("lambda")
			if err != nil {
				return nil, nil, err
			}
			p.Lambda = parseFloatLenient(v)
			if p.Lambda <= 0 {
				warnings = append(warnings, Warning{"error in the input - lambda is not positive"})
			}
		case "-mu":
			v, err := takeValue("mu")
			if err != nil {
				return nil, nil, err
			}
			p.Mu = parseFloatLenient(v)
			if p.Mu <= 0 {
				warnings = append(warnings, Warning{"error in the input - mu is not positive"})
			}
		case "-r":
			v, err := takeValue("r")
			if err != nil {
				return nil, nil, err
			}
			p.Rate = parseFloatLenient(v)
			if p.Rate <= 0 {
				warnings = append(warnings, Warning{"error in the input - rate is not positive"})
			}
		case "-B":
			v, err := takeValue("B")
			if err != nil {
				return nil, nil, err
			}
			p.B = parseIntLenient(v)
			if p.B <= 0 {
				warnings = append(warnings, Warning{"error in the input - B is not positive"})
			}
		case "-P":
			v, err := takeValue("P")
			if err != nil {
				return nil, nil, err
			}
			p.P = parseIntLenient(v)
			if p.P <= 0 {
				warnings = append(warnings, Warning{"error in the input - P is not positive"})
			}
		case "-n":
			v, err := takeValue("n")
			if err != nil {
				return nil, nil, err
			}
			p.N = parseIntLenient(v)
			if p.N <= 0 {
				warnings = append(warnings, Warning{"error in the input - n is not positive"})
			}
		case "-t":
			v, err := takeValue("t")
			if err != nil {
				return nil, nil, err
			}
			p.TSFile = v
		case "-config":
			if _, err := takeValue("config"); err != nil {
				return nil, nil, err
			}
			// Consumed here only to validate presence of a value;
			// the caller loads it (see LoadYAMLDefaults) into the base
			// it passes to ParseArgsFrom, so flags still win over the
			// file.
		case "-log-level":
			v, err := takeValue("log-level")
			if err != nil {
				return nil, nil, err
			}
			p.LogLevel = v
		default:
			return nil, nil, malformed("unknown flag used")
		}
	}

	p.convert()
	return p, warnings, nil
}

// ConfigPath scans args for an explicit "-config" value without fully
// parsing the commandline, so main can load yaml defaults before the
// authoritative ParseArgs pass. Returns "" if absent.
func ConfigPath(args []string) string {
	for i, arg := range args {
		if arg == "-config" && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			return args[i+1]
		}
	}
	return ""
}

// parseFloatLenient mirrors strtod's leniency: an unparsable string
// yields 0 rather than an error, so the value flows into the same
// "not positive" warning path the original program takes.
func parseFloatLenient(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseIntLenient mirrors strtol's leniency: an unparsable string
// yields 0.
func parseIntLenient(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatWarnings renders warnings the way the original program writes
// them to stderr, one per line.
func FormatWarnings(warnings []Warning) string {
	var b strings.Builder
	for _, w := range warnings {
		fmt.Fprintln(&b, w.Error())
	}
	return b.String()
}
