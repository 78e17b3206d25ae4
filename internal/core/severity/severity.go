// Package severity defines the four-value check outcome scale and the rule
// for combining independent threshold results into one verdict.
// Pure values, no I/O.
package severity

// Severity is the outcome of a check. The numeric value doubles as the
// process exit code expected by monitoring schedulers.
type Severity int

const (
	OK       Severity = 0
	Warning  Severity = 1
	Critical Severity = 2
	Unknown  Severity = 3
)

// String returns the label used in plugin output lines.
func (s Severity) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit code for this severity.
func (s Severity) ExitCode() int {
	if s < OK || s > Unknown {
		return int(Unknown)
	}
	return int(s)
}

// Combine folds a candidate outcome into the current one. This is not a plain
// maximum: CRITICAL dominates everything, WARNING dominates OK and UNKNOWN,
// and UNKNOWN only sticks while no definite breach has been recorded.
func Combine(current, candidate Severity) Severity {
	switch {
	case candidate == Critical || current == Critical:
		return Critical
	case candidate == Warning:
		return Warning
	case candidate == Unknown && current == OK:
		return Unknown
	default:
		return current
	}
}
