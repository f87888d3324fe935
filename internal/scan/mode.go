package scan

import "strings"

// Mode is a set of traversal flags.
type Mode uint

const (
	ModeSearch Mode = 1 << iota
	ModeVerify
	ModeHunt
	ModeCount
	ModeVerbose
	ModeZip
	ModeDelete
	ModeOnlyDelete
)

var modeNames = []struct {
	mode Mode
	name string
}{
	{ModeSearch, "search"},
	{ModeVerify, "verify"},
	{ModeHunt, "hunt"},
	{ModeCount, "count"},
	{ModeVerbose, "verbose"},
	{ModeZip, "zip"},
	{ModeDelete, "delete"},
	{ModeOnlyDelete, "only-delete"},
}

// Has reports whether every bit in flag is set.
func (m Mode) Has(flag Mode) bool {
	return m&flag == flag
}

func (m Mode) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, n := range modeNames {
		if m.Has(n.mode) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// matches reports whether leaves are fingerprinted at all.
func (m Mode) matches() bool {
	return !m.Has(ModeCount) && m&(ModeSearch|ModeVerify|ModeHunt) != 0
}
