// Package status holds the per-member probe results of one check cycle and
// groups them for the report.
package status

const (
	// StatusUnknown means the member has not been classified yet.
	StatusUnknown Status = iota

	// StatusAlive means the member replied to the probe.
	StatusAlive

	// StatusDead means the member did not reply, or the probe itself failed.
	StatusDead
)

// Status is the liveness classification of a fleet member.
type Status int8

// ParseStatus parses a status string.
//
// If passed an unsupported status, it returns StatusUnknown.
func ParseStatus(raw string) Status {
	switch raw {
	case "ALIVE":
		return StatusAlive
	case "DEAD":
		return StatusDead
	default:
		return StatusUnknown
	}
}

// UnmarshalText unmarshals text as a Status.
//
// This function always returns nil.
// Unsupported values parse as StatusUnknown instead of returning an error.
func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}

// String makes Status a string.
func (s Status) String() string {
	switch s {
	case StatusAlive:
		return "ALIVE"
	case StatusDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// MarshalText marshals Status as text.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
