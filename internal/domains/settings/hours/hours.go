// Package hours parses, validates and merges per-day time ranges such as
// business hours and breaks. Everything here is pure.
package hours

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	MinutesPerDay = 24 * 60

	clockLayout = "HH:MM"
)

var (
	ErrMalformed = errors.New("malformed time")
	ErrOrdering  = errors.New("start must be before end")
	ErrShape     = errors.New("range must be a [start, end] pair")
)

// Range is a half-open [Start, End) span in minutes since midnight.
type Range struct {
	Start int `json:"start_minute"`
	End   int `json:"end_minute"`
}

func (r Range) Pair() [2]string {
	return [2]string{FormatClock(r.Start), FormatClock(r.End)}
}

func (r Range) String() string {
	return FormatClock(r.Start) + "-" + FormatClock(r.End)
}

// Intersects reports a non-empty overlap.
func (r Range) Intersects(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// RangeError describes one dropped input range.
type RangeError struct {
	Index int
	Raw   []string
	Err   error
}

func (e RangeError) Error() string {
	return fmt.Sprintf("range %d %v: %v", e.Index, e.Raw, e.Err)
}

func (e RangeError) Unwrap() error {
	return e.Err
}

type Result struct {
	Ranges []Range
	Errors []RangeError
}

// ParseClock converts HH:MM (00:00 through 24:00) to minutes since midnight.
func ParseClock(value string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w %q, expected %s", ErrMalformed, value, clockLayout)
	}

	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)

	if errH != nil || errM != nil || h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w %q, expected %s", ErrMalformed, value, clockLayout)
	}

	return h*60 + m, nil
}

func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Normalize parses raw pairs, drops invalid ones into Errors, then sorts and
// merges the rest so no two ranges overlap or touch.
func Normalize(raw [][]string) Result {
	res := Result{Ranges: []Range{}}

	parsed := make([]Range, 0, len(raw))

	for i, pair := range raw {
		r, err := parse(pair)
		if err != nil {
			res.Errors = append(res.Errors, RangeError{Index: i, Raw: pair, Err: err})

			continue
		}

		parsed = append(parsed, r)
	}

	res.Ranges = Merge(parsed)

	return res
}

func parse(pair []string) (Range, error) {
	if len(pair) != 2 {
		return Range{}, ErrShape
	}

	start, err := ParseClock(pair[0])
	if err != nil {
		return Range{}, err
	}

	end, err := ParseClock(pair[1])
	if err != nil {
		return Range{}, err
	}

	if start >= end {
		return Range{}, fmt.Errorf("%w: %s >= %s", ErrOrdering, pair[0], pair[1])
	}

	return Range{Start: start, End: end}, nil
}

// Merge sorts valid ranges and coalesces any that overlap or touch.
func Merge(ranges []Range) []Range {
	sorted := slices.Clone(ranges)
	slices.SortFunc(sorted, func(a, b Range) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}

		return a.End - b.End
	})

	merged := make([]Range, 0, len(sorted))

	for _, r := range sorted {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End {
			merged[n-1].End = max(merged[n-1].End, r.End)

			continue
		}

		merged = append(merged, r)
	}

	return merged
}

// Uncovered returns the ranges that intersect none of container.
func Uncovered(ranges, container []Range) []Range {
	res := []Range{}

	for _, r := range ranges {
		if !slices.ContainsFunc(container, r.Intersects) {
			res = append(res, r)
		}
	}

	return res
}

// Pairs renders ranges back to the HH:MM wire form.
func Pairs(ranges []Range) [][2]string {
	res := make([][2]string, len(ranges))
	for i, r := range ranges {
		res[i] = r.Pair()
	}

	return res
}
