package ids

import (
	"strconv"
	"strings"
)

// NewPrefix marks IDs issued for records that have not been persisted yet.
const NewPrefix = "NEW-"

// NewIDCeiling is the largest counter a new ID may carry.
// Counters count down from here and wrap back after 1.
const NewIDCeiling int64 = 1<<53 - 1

// InvalidNewIDMessage is returned by ValidateNewID for malformed IDs.
const InvalidNewIDMessage = "Invalid New ID"

// IsNewID reports whether id carries the new-record prefix.
func IsNewID(id string) bool {
	return strings.HasPrefix(id, NewPrefix)
}

// FormatNewID renders counter as a new-record ID.
func FormatNewID(counter int64) string {
	return NewPrefix + strconv.FormatInt(counter, 10)
}

// ParseNewID extracts the counter embedded in a new-record ID.
// It fails unless the suffix is a base-10 integer in [1, NewIDCeiling].
func ParseNewID(id string) (int64, bool) {
	if !IsNewID(id) {
		return 0, false
	}
	suffix := id[len(NewPrefix):]
	if suffix == "" || suffix[0] == '+' || suffix[0] == '-' {
		return 0, false
	}
	counter, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || counter < 1 || counter > NewIDCeiling {
		return 0, false
	}
	return counter, true
}

// ValidateNewID returns InvalidNewIDMessage if id is not a well-formed
// new-record ID, and "" otherwise.
func ValidateNewID(id string) string {
	if _, ok := ParseNewID(id); !ok {
		return InvalidNewIDMessage
	}
	return ""
}

// Generator issues new-record IDs, counting down from a ceiling.
//
// A Generator is owned by a single page and is not safe for concurrent use.
// The zero value starts at NewIDCeiling.
type Generator struct {
	next    int64
	ceiling int64
}

// NewGenerator returns a generator that starts at NewIDCeiling, or just
// below the counter carried by seedID when seedID is a valid new ID. This
// lets a replayed draft keep its ID without the next draft reusing it.
func NewGenerator(seedID string) *Generator {
	return newGenerator(NewIDCeiling, seedID)
}

func newGenerator(ceiling int64, seedID string) *Generator {
	g := &Generator{next: ceiling, ceiling: ceiling}
	if counter, ok := ParseNewID(seedID); ok && counter <= ceiling {
		g.next = counter - 1
		g.wrap()
	}
	return g
}

// Next returns the next ID and advances the counter.
func (g *Generator) Next() string {
	g.wrap()
	id := FormatNewID(g.next)
	g.next--
	g.wrap()
	return id
}

func (g *Generator) wrap() {
	if g.ceiling < 1 {
		g.ceiling = NewIDCeiling
	}
	if g.next < 1 || g.next > g.ceiling {
		g.next = g.ceiling
	}
}
