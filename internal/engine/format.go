package engine

import "fmt"

// formatMS renders a microsecond duration the way the original
// emulator's inline "%d.%03dms" pairs do: integer milliseconds, then a
// three-digit microsecond remainder.
func formatMS(diffUS int64) string {
	ms := diffUS / 1000
	frac := diffUS % 1000
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%03dms", ms, frac)
}

// tokenWord pluralizes "token" the same way TokenArrives/PacketLeavesQ1
// do: plural only when the count exceeds one, so both zero and one
// tokens print as singular.
func tokenWord(count int64) string {
	if count > 1 {
		return "tokens"
	}
	return "token"
}
