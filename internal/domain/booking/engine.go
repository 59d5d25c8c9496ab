package booking

import (
	"github.com/clinicdesk/clinic-api/internal/platform/interval"
)

// DayInputs collects everything that shapes one doctor's day: the weekly
// pattern, date-specific extra windows, closures and the windows already
// taken by active encounters. All ranges are minutes of day.
type DayInputs struct {
	Recurring     []interval.Range
	Occasional    []interval.Range
	Closures      []interval.Range
	FullDayClosed bool
	Booked        []interval.Range
}

// OpenIntervals resolves the doctor's working time for the day: the union of
// recurring and occasional windows with closures cut out. Booked time is
// still included.
func OpenIntervals(in DayInputs) []interval.Range {
	if in.FullDayClosed {
		return nil
	}
	working := interval.Union(append(append([]interval.Range{}, in.Recurring...), in.Occasional...))
	return interval.Subtract(working, in.Closures)
}

// FreeIntervals is OpenIntervals with booked time cut out as well. The result
// is what remains bookable.
func FreeIntervals(in DayInputs) []interval.Range {
	return interval.Subtract(OpenIntervals(in), in.Booked)
}

// Quantize cuts free intervals into slot start minutes on a fixed grid. The
// grid is anchored at align and steps by duration; the first start in each
// interval is the first grid point at or after the interval's start, and a
// tail shorter than duration yields no slot.
func Quantize(free []interval.Range, duration, align int) []int {
	if duration <= 0 {
		return nil
	}
	var starts []int
	for _, r := range free {
		s := r.Start
		if rem := mod(s-align, duration); rem != 0 {
			s += duration - rem
		}
		for ; s+duration <= r.End; s += duration {
			starts = append(starts, s)
		}
	}
	return starts
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
