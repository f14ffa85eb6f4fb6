package settlement

import "strings"

// Result is the settled outcome of a tracked bet.
// The zero value is Pending.
type Result int

const (
	Pending Result = iota
	Win
	Loss
	Push
	Void
)

var resultNames = map[Result]string{
	Pending: "pending",
	Win:     "win",
	Loss:    "loss",
	Push:    "push",
	Void:    "void",
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "pending"
}

// Settled reports whether the result moves money.
func (r Result) Settled() bool {
	return r == Win || r == Loss
}

// ParseResult maps a stored or user-supplied result name to a Result.
// Matching is case-insensitive; anything unrecognized is Pending.
func ParseResult(s string) Result {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "win", "won", "w":
		return Win
	case "loss", "lost", "lose", "l":
		return Loss
	case "push":
		return Push
	case "void", "cancelled", "canceled":
		return Void
	default:
		return Pending
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Result) UnmarshalText(text []byte) error {
	*r = ParseResult(string(text))
	return nil
}
