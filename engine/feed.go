package engine

// Feed is a bounded ring of announcement lines, oldest first. It is the
// engine's default announcement sink.
type Feed struct {
	entries []string
	max     int
}

// NewFeed creates a feed holding at most max lines.
func NewFeed(max int) *Feed {
	if max < 1 {
		max = 1
	}
	return &Feed{
		entries: make([]string, 0, max),
		max:     max,
	}
}

// Emit appends a line, dropping the oldest once full. Empty lines are skipped.
func (f *Feed) Emit(msg string) {
	if msg == "" {
		return
	}
	f.entries = append(f.entries, msg)
	if len(f.entries) > f.max {
		f.entries = f.entries[len(f.entries)-f.max:]
	}
}

// Last returns a copy of the newest n lines, oldest first.
func (f *Feed) Last(n int) []string {
	if n > len(f.entries) || n < 0 {
		n = len(f.entries)
	}
	out := make([]string, n)
	copy(out, f.entries[len(f.entries)-n:])
	return out
}

// Len returns the number of stored lines.
func (f *Feed) Len() int {
	return len(f.entries)
}

// Reset replaces the feed contents, keeping only the newest max lines.
func (f *Feed) Reset(lines []string) {
	f.entries = f.entries[:0]
	for _, l := range lines {
		f.Emit(l)
	}
}
