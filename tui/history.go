// Package tui provides a Bubble Tea dashboard for the arena engine.
package tui

// History keeps submitted commands for Up/Down recall. Re-entering a
// command moves it to the newest position.
type History struct {
	entries []string // oldest first
	max     int
	back    int // 0 = fresh input, n = n-th newest entry
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{max: max}
}

// Push records a command and resets navigation.
func (h *History) Push(cmd string) {
	h.back = 0
	for i, e := range h.entries {
		if e == cmd {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, cmd)
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Prev steps to an older command. It stops at the oldest one.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.back < len(h.entries) {
		h.back++
	}
	return h.entries[len(h.entries)-h.back], true
}

// Next steps to a newer command, returning false once back at fresh input.
func (h *History) Next() (string, bool) {
	if h.back <= 1 {
		h.back = 0
		return "", false
	}
	h.back--
	return h.entries[len(h.entries)-h.back], true
}

// Len returns the number of stored commands.
func (h *History) Len() int {
	return len(h.entries)
}
