package hours

import (
	"fmt"
	"slices"
	"strings"
)

var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Week holds normalized ranges keyed by lowercase weekday name.
type Week map[string][]Range

// WeekResult is the outcome of normalizing a whole week.
type WeekResult struct {
	Week   Week
	Errors map[string][]RangeError
}

// ParseWeekday accepts full English day names in any case.
func ParseWeekday(name string) (string, error) {
	day := strings.ToLower(strings.TrimSpace(name))
	if !slices.Contains(Weekdays, day) {
		return "", fmt.Errorf("unknown weekday %q", name)
	}

	return day, nil
}

// NormalizeWeek normalizes each day. Unknown weekday keys fail the whole
// input; bad ranges within a day are reported per day and dropped.
func NormalizeWeek(raw map[string][][]string) (WeekResult, error) {
	res := WeekResult{Week: Week{}, Errors: map[string][]RangeError{}}

	for name, ranges := range raw {
		day, err := ParseWeekday(name)
		if err != nil {
			return res, err
		}

		normalized := Normalize(ranges)
		res.Week[day] = Merge(append(res.Week[day], normalized.Ranges...))

		if len(normalized.Errors) > 0 {
			res.Errors[day] = append(res.Errors[day], normalized.Errors...)
		}
	}

	return res, nil
}

// UncoveredByDay flags, per day, ranges of w that fall outside container on
// the same day. Days missing from container count as closed.
func (w Week) UncoveredByDay(container Week) map[string][]Range {
	res := map[string][]Range{}

	for day, ranges := range w {
		if outside := Uncovered(ranges, container[day]); len(outside) > 0 {
			res[day] = outside
		}
	}

	return res
}

// Wire renders the week as {weekday: [[HH:MM, HH:MM], ...]}.
func (w Week) Wire() map[string][][2]string {
	res := make(map[string][][2]string, len(w))
	for day, ranges := range w {
		res[day] = Pairs(ranges)
	}

	return res
}

// FromWire parses an already-normalized stored week, ignoring bad entries.
func FromWire(wire map[string][][2]string) Week {
	res := Week{}

	for day, pairs := range wire {
		raw := make([][]string, len(pairs))
		for i, p := range pairs {
			raw[i] = []string{p[0], p[1]}
		}

		res[day] = Normalize(raw).Ranges
	}

	return res
}
