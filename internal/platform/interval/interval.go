// Package interval provides half-open time ranges in minutes of day and the
// set operations the slot engine is built from. All operations are pure:
// inputs are never mutated and the same inputs always produce the same
// output, sorted and pairwise disjoint.
package interval

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidRange is returned when a range has zero or negative length.
var ErrInvalidRange = errors.New("invalid time range")

// MinutesPerDay bounds a minute-of-day value.
const MinutesPerDay = 24 * 60

// Range is a half-open interval [Start, End) in minutes.
type Range struct {
	Start int
	End   int
}

// New validates and returns a range. Zero-length and inverted ranges are
// rejected, never clamped.
func New(start, end int) (Range, error) {
	if start >= end {
		return Range{}, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, start, end)
	}
	return Range{Start: start, End: end}, nil
}

// Duration returns the length of the range in minutes.
func (r Range) Duration() int { return r.End - r.Start }

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// Overlaps reports whether r and other share at least one minute.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%02d:%02d, %02d:%02d)", r.Start/60, r.Start%60, r.End/60, r.End%60)
}

// Union merges overlapping and touching ranges into a minimal sorted,
// disjoint sequence. Two ranges merge when a.End >= b.Start.
func Union(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Subtract returns the parts of base not covered by any cut. Cuts are
// unioned first, so overlapping cuts behave like their combined cover. A cut
// may remove a base range entirely or split it in two.
func Subtract(base, cuts []Range) []Range {
	base = Union(base)
	cuts = Union(cuts)

	var out []Range
	ci := 0
	for _, b := range base {
		cur := b.Start
		for ci < len(cuts) && cuts[ci].End <= cur {
			ci++
		}
		for j := ci; j < len(cuts) && cuts[j].Start < b.End; j++ {
			c := cuts[j]
			if c.Start > cur {
				out = append(out, Range{Start: cur, End: c.Start})
			}
			if c.End > cur {
				cur = c.End
			}
		}
		if cur < b.End {
			out = append(out, Range{Start: cur, End: b.End})
		}
	}
	return out
}

// Intersect returns the common cover of a and b as a sorted sweep over both
// unioned inputs.
func Intersect(a, b []Range) []Range {
	a = Union(a)
	b = Union(b)

	var out []Range
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start > start {
			start = b[j].Start
		}
		end := a[i].End
		if b[j].End < end {
			end = b[j].End
		}
		if start < end {
			out = append(out, Range{Start: start, End: end})
		}
		if a[i].End < b[j].End {
			i++
		} else {
			j++
		}
	}
	return out
}

// Total returns the summed duration of a disjoint sequence.
func Total(ranges []Range) int {
	sum := 0
	for _, r := range ranges {
		sum += r.Duration()
	}
	return sum
}
