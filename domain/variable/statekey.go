package variable

import "strings"

// KeySeparator joins per-variable states into a composite distribution key.
// State values must not contain the separator; the reader layer rejects
// such cells before they reach the engine.
const KeySeparator = "|"

// JoinKey builds a composite key from a tuple of states in fixed
// variable order.
func JoinKey(states []string) string {
	return strings.Join(states, KeySeparator)
}

// SplitKey decomposes a composite key back into per-variable states
func SplitKey(key string) []string {
	return strings.Split(key, KeySeparator)
}
