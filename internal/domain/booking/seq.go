package booking

import "time"

// SlotSeq walks a date range one day at a time, loading each day's slots
// only when the consumer reaches it. A handler that stops after the first
// few slots never touches the remaining days.
type SlotSeq struct {
	loadDay func(date time.Time) ([]Slot, error)
	cur     time.Time
	end     time.Time
	buf     []Slot
	i       int
	err     error
	done    bool
}

func newSlotSeq(from, to time.Time, loadDay func(date time.Time) ([]Slot, error)) *SlotSeq {
	return &SlotSeq{loadDay: loadDay, cur: from, end: to}
}

// Next returns the next slot in chronological order. It returns false when
// the sequence is exhausted or a load failed; check Err afterwards.
func (s *SlotSeq) Next() (Slot, bool) {
	for !s.done && s.err == nil {
		if s.i < len(s.buf) {
			slot := s.buf[s.i]
			s.i++
			return slot, true
		}
		if s.cur.After(s.end) {
			s.done = true
			break
		}
		s.buf, s.err = s.loadDay(s.cur)
		s.i = 0
		s.cur = s.cur.AddDate(0, 0, 1)
	}
	return Slot{}, false
}

// Err returns the first load error, if any.
func (s *SlotSeq) Err() error { return s.err }

// Collect drains the sequence into a slice.
func (s *SlotSeq) Collect() ([]Slot, error) {
	var out []Slot
	for {
		slot, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, slot)
	}
	return out, s.err
}
