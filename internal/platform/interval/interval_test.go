package interval

import (
	"errors"
	"reflect"
	"testing"
)

func mustRange(t *testing.T, start, end int) Range {
	t.Helper()
	r, err := New(start, end)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", start, end, err)
	}
	return r
}

func TestNew_RejectsDegenerateRanges(t *testing.T) {
	if _, err := New(600, 600); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("zero-length range: got %v, want ErrInvalidRange", err)
	}
	if _, err := New(720, 600); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("inverted range: got %v, want ErrInvalidRange", err)
	}
}

func TestUnion_MergesOverlappingAndTouching(t *testing.T) {
	in := []Range{
		{Start: 540, End: 600},  // 09:00-10:00
		{Start: 570, End: 630},  // 09:30-10:30 overlaps
		{Start: 630, End: 660},  // 10:30-11:00 touches
		{Start: 720, End: 780},  // 12:00-13:00 separate
	}
	got := Union(in)
	want := []Range{{Start: 540, End: 660}, {Start: 720, End: 780}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Union = %v, want %v", got, want)
	}
}

func TestUnion_OutputSortedDisjointSameCover(t *testing.T) {
	in := []Range{
		{Start: 800, End: 860},
		{Start: 100, End: 200},
		{Start: 150, End: 180}, // nested
		{Start: 50, End: 100},  // touches the second
	}
	got := Union(in)

	for i := 1; i < len(got); i++ {
		if got[i-1].End >= got[i].Start {
			t.Errorf("ranges %v and %v are not disjoint/sorted", got[i-1], got[i])
		}
	}

	// Same total cover: every input minute is covered, no extra minutes.
	covered := func(ranges []Range, m int) bool {
		for _, r := range ranges {
			if r.Start <= m && m < r.End {
				return true
			}
		}
		return false
	}
	for m := 0; m < 900; m++ {
		if covered(in, m) != covered(got, m) {
			t.Fatalf("minute %d: cover mismatch", m)
		}
	}
}

func TestUnion_Empty(t *testing.T) {
	if got := Union(nil); got != nil {
		t.Errorf("Union(nil) = %v, want nil", got)
	}
}

func TestSubtract_CutSplitsBase(t *testing.T) {
	base := []Range{mustRange(t, 540, 720)}   // 09:00-12:00
	cuts := []Range{mustRange(t, 600, 630)}   // 10:00-10:30
	got := Subtract(base, cuts)
	want := []Range{{Start: 540, End: 600}, {Start: 630, End: 720}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Subtract = %v, want %v", got, want)
	}
}

func TestSubtract_CutSwallowsBase(t *testing.T) {
	base := []Range{mustRange(t, 600, 660)}
	cuts := []Range{mustRange(t, 540, 720)}
	if got := Subtract(base, cuts); len(got) != 0 {
		t.Errorf("Subtract = %v, want empty", got)
	}
}

func TestSubtract_OverlappingCutsUnionedFirst(t *testing.T) {
	base := []Range{mustRange(t, 540, 720)}
	cuts := []Range{
		mustRange(t, 570, 620),
		mustRange(t, 600, 660), // overlaps the previous cut
	}
	got := Subtract(base, cuts)
	want := []Range{{Start: 540, End: 570}, {Start: 660, End: 720}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Subtract = %v, want %v", got, want)
	}
}

func TestSubtract_MultipleBases(t *testing.T) {
	base := []Range{mustRange(t, 480, 540), mustRange(t, 600, 720)}
	cuts := []Range{mustRange(t, 500, 620), mustRange(t, 700, 800)}
	got := Subtract(base, cuts)
	want := []Range{{Start: 480, End: 500}, {Start: 620, End: 700}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Subtract = %v, want %v", got, want)
	}
}

func TestSubtract_Idempotent(t *testing.T) {
	base := []Range{mustRange(t, 480, 720), mustRange(t, 780, 1020)}
	cuts := []Range{mustRange(t, 500, 530), mustRange(t, 700, 800), mustRange(t, 900, 910)}
	once := Subtract(base, cuts)
	twice := Subtract(once, cuts)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("subtract not idempotent: once=%v twice=%v", once, twice)
	}
}

func TestSubtract_NoCuts(t *testing.T) {
	base := []Range{mustRange(t, 540, 720)}
	got := Subtract(base, nil)
	if !reflect.DeepEqual(got, base) {
		t.Errorf("Subtract with no cuts = %v, want %v", got, base)
	}
}

func TestIntersect(t *testing.T) {
	a := []Range{mustRange(t, 540, 660), mustRange(t, 720, 780)}
	b := []Range{mustRange(t, 600, 740)}
	got := Intersect(a, b)
	want := []Range{{Start: 600, End: 660}, {Start: 720, End: 740}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Intersect = %v, want %v", got, want)
	}
}

func TestIntersect_Disjoint(t *testing.T) {
	a := []Range{mustRange(t, 540, 600)}
	b := []Range{mustRange(t, 600, 660)} // touching is not overlapping
	if got := Intersect(a, b); len(got) != 0 {
		t.Errorf("Intersect = %v, want empty", got)
	}
}

func TestContainsOverlaps(t *testing.T) {
	r := Range{Start: 540, End: 720}
	if !r.Contains(Range{Start: 540, End: 720}) {
		t.Error("range should contain itself")
	}
	if r.Contains(Range{Start: 530, End: 600}) {
		t.Error("range should not contain one starting earlier")
	}
	if r.Overlaps(Range{Start: 720, End: 780}) {
		t.Error("touching ranges do not overlap")
	}
	if !r.Overlaps(Range{Start: 719, End: 780}) {
		t.Error("ranges sharing a minute overlap")
	}
}

func TestTotal(t *testing.T) {
	ranges := []Range{{Start: 540, End: 600}, {Start: 630, End: 720}}
	if got := Total(ranges); got != 150 {
		t.Errorf("Total = %d, want 150", got)
	}
}
