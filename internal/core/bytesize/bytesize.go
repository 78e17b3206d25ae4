// Package bytesize converts between raw byte counts and the human-formatted
// size notation used by container tooling. Pure functions, no I/O.
package bytesize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Placeholder is emitted by container tooling for metrics the runtime does
// not report in the container's current state (e.g. network I/O of a
// container without bound ports). It always parses as zero.
const Placeholder = "--"

var (
	// ErrUnknownUnit indicates a size literal with an unrecognized unit suffix.
	ErrUnknownUnit = errors.New("unknown size unit")

	// ErrNoUnit indicates a size literal without a discernible unit suffix.
	ErrNoUnit = errors.New("size literal has no unit suffix")
)

const (
	kib = int64(1) << 10
	mib = int64(1) << 20
	gib = int64(1) << 30
	tib = int64(1) << 40
)

// multipliers maps unit suffixes to byte multipliers. Decimal units use
// powers of 1000, binary units powers of 1024. Both spellings of "kB" occur
// in the wild.
var multipliers = map[string]float64{
	"B":   1,
	"kB":  1000,
	"KB":  1000,
	"MB":  1000 * 1000,
	"GB":  1000 * 1000 * 1000,
	"TB":  1000 * 1000 * 1000 * 1000,
	"KiB": float64(kib),
	"MiB": float64(mib),
	"GiB": float64(gib),
	"TiB": float64(tib),
}

// Parse converts a human-formatted size string ("105 MB", "2.5GiB",
// "105e+3MB") into bytes, rounded to the nearest integer. A literal without a
// discernible unit suffix parses as zero; an unknown suffix is an error.
func Parse(s string) (int64, error) {
	return parse(s, false)
}

// ParseStrict is Parse, except that a literal without a unit suffix is
// rejected with ErrNoUnit instead of being treated as zero. The placeholder
// "--" still parses as zero in both modes.
func ParseStrict(s string) (int64, error) {
	return parse(s, true)
}

func parse(s string, strict bool) (int64, error) {
	// Some tool versions put whitespace between value and unit.
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == Placeholder {
		return 0, nil
	}

	unit := trailingLetters(s)
	if unit == "" || len(unit) == len(s) {
		if strict {
			return 0, fmt.Errorf("%w: %q", ErrNoUnit, s)
		}
		return 0, nil
	}

	value, err := strconv.ParseFloat(s[:len(s)-len(unit)], 64)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: invalid numeric value", s)
	}

	mult, ok := multipliers[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	return int64(math.Round(value * mult)), nil
}

// trailingLetters returns the suffix of s consisting of ASCII letters. The
// numeric literal may itself contain an exponent marker ("105e+3MB"), which
// is safe here because the exponent digits terminate the letter run.
func trailingLetters(s string) string {
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			break
		}
		i--
	}
	return s[i:]
}

// Format renders a byte count using binary multiples, choosing the largest
// unit with a magnitude of at least one and two decimal places. Counts below
// 1024 render as a whole-byte figure.
func Format(n int64) string {
	switch {
	case n >= tib:
		return formatUnit(float64(n)/float64(tib), "TiB")
	case n >= gib:
		return formatUnit(float64(n)/float64(gib), "GiB")
	case n >= mib:
		return formatUnit(float64(n)/float64(mib), "MiB")
	case n >= kib:
		return formatUnit(float64(n)/float64(kib), "KiB")
	default:
		return strconv.FormatInt(n, 10) + "B"
	}
}

func formatUnit(value float64, unit string) string {
	return strconv.FormatFloat(value, 'f', 2, 64) + unit
}
