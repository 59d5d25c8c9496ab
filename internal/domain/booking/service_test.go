package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-api/internal/domain/encounter"
	"github.com/clinicdesk/clinic-api/internal/platform/interval"
)

// memStore is an in-memory Store with the same locking discipline as the
// postgres one: LockDoctor blocks until the holding transaction finishes.
type memStore struct {
	mu     sync.Mutex
	lockMu sync.Mutex

	doctors    map[uuid.UUID]bool
	patients   map[uuid.UUID]string
	recurring  map[string][]interval.Range // doctor+weekday
	occasional map[string][]interval.Range // doctor+date
	closures   map[string][]interval.Range // doctor+date
	fullDay    map[string]bool
	encounters map[uuid.UUID]*encounter.Encounter
}

func newMemStore() *memStore {
	return &memStore{
		doctors:    make(map[uuid.UUID]bool),
		patients:   make(map[uuid.UUID]string),
		recurring:  make(map[string][]interval.Range),
		occasional: make(map[string][]interval.Range),
		closures:   make(map[string][]interval.Range),
		fullDay:    make(map[string]bool),
		encounters: make(map[uuid.UUID]*encounter.Encounter),
	}
}

func weekdayKey(doctorID uuid.UUID, wd time.Weekday) string {
	return fmt.Sprintf("%s/%d", doctorID, wd)
}

func dateKey(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s/%s", doctorID, date.Format("2006-01-02"))
}

func (s *memStore) addDoctor() uuid.UUID {
	id := uuid.New()
	s.doctors[id] = true
	return id
}

func (s *memStore) addPatient(name string) uuid.UUID {
	id := uuid.New()
	s.patients[id] = name
	return id
}

func (s *memStore) addRecurring(doctorID uuid.UUID, wd time.Weekday, start, end int) {
	k := weekdayKey(doctorID, wd)
	s.recurring[k] = append(s.recurring[k], interval.Range{Start: start, End: end})
}

func (s *memStore) addOccasional(doctorID uuid.UUID, date time.Time, start, end int) {
	k := dateKey(doctorID, date)
	s.occasional[k] = append(s.occasional[k], interval.Range{Start: start, End: end})
}

func (s *memStore) addClosure(doctorID uuid.UUID, date time.Time, start, end int) {
	k := dateKey(doctorID, date)
	s.closures[k] = append(s.closures[k], interval.Range{Start: start, End: end})
}

func (s *memStore) addFullDayClosure(doctorID uuid.UUID, date time.Time) {
	s.fullDay[dateKey(doctorID, date)] = true
}

func (s *memStore) DoctorExists(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doctors[id], nil
}

func (s *memStore) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.patients[id]
	return ok, nil
}

func (s *memStore) RecurringForWeekday(_ context.Context, doctorID uuid.UUID, wd time.Weekday) ([]interval.Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recurring[weekdayKey(doctorID, wd)], nil
}

func (s *memStore) OccasionalForDate(_ context.Context, doctorID uuid.UUID, date time.Time) ([]interval.Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occasional[dateKey(doctorID, date)], nil
}

func (s *memStore) ClosuresForDate(_ context.Context, doctorID uuid.UUID, date time.Time) ([]interval.Range, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := dateKey(doctorID, date)
	return s.closures[k], s.fullDay[k], nil
}

func (s *memStore) ActiveVisits(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var visits []Visit
	for _, e := range s.encounters {
		if e.DoctorID == doctorID && e.Active() &&
			!e.ScheduledAt.Before(from) && e.ScheduledAt.Before(to) {
			cp := *e
			visits = append(visits, Visit{Encounter: &cp, PatientName: s.patients[e.PatientID]})
		}
	}
	return visits, nil
}

func (s *memStore) CreateEncounter(_ context.Context, e *encounter.Encounter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.New()
	s.encounters[e.ID] = e
	return nil
}

func (s *memStore) LockDoctor(_ context.Context, _ uuid.UUID) error {
	s.lockMu.Lock()
	return nil
}

// memTx releases the advisory lock when the transaction body returns, like
// pg_advisory_xact_lock does on commit or rollback.
type memTx struct{ store *memStore }

func (t memTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	t.store.lockMu.Unlock()
	return err
}

type memCanceller struct{ store *memStore }

func (c memCanceller) UpdateStatus(_ context.Context, id uuid.UUID, to string, _ *uuid.UUID) (*encounter.Encounter, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	e, ok := c.store.encounters[id]
	if !ok {
		return nil, encounter.ErrNotFound
	}
	if !encounter.CanTransition(e.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", encounter.ErrInvalidTransition, e.Status, to)
	}
	e.Status = to
	cp := *e
	return &cp, nil
}

// Fixture: 2026-03-02 is a Monday. The clock is pinned to 08:00 that day.
var (
	monday  = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
)

func newTestService(store *memStore) *Service {
	svc := NewService(store, memTx{store: store}, memCanceller{store: store}, zerolog.Nop(), Options{
		DefaultDurationMinutes: 30,
		Location:               time.UTC,
	})
	svc.now = func() time.Time { return monday.Add(8 * time.Hour) }
	return svc
}

// seedWorkedExample sets up Monday 09:00-12:00 with a closure 10:00-10:30
// and a booking 09:30-10:00.
func seedWorkedExample(t *testing.T, store *memStore) (doctorID, patientID uuid.UUID) {
	t.Helper()
	doctorID = store.addDoctor()
	patientID = store.addPatient("Ana Lima")
	store.addRecurring(doctorID, time.Monday, minutes(9, 0), minutes(12, 0))
	store.addClosure(doctorID, monday, minutes(10, 0), minutes(10, 30))
	seedID := uuid.New()
	store.encounters[seedID] = &encounter.Encounter{
		ID:              seedID,
		DoctorID:        doctorID,
		PatientID:       patientID,
		Status:          encounter.StatusScheduled,
		ScheduledAt:     monday.Add(time.Duration(minutes(9, 30)) * time.Minute),
		DurationMinutes: 30,
	}
	return doctorID, patientID
}

func slotStarts(t *testing.T, svc *Service, doctorID uuid.UUID, from, to time.Time, duration int) []time.Time {
	t.Helper()
	seq, err := svc.ListAvailableSlots(context.Background(), doctorID, from, to, duration)
	if err != nil {
		t.Fatalf("ListAvailableSlots: %v", err)
	}
	slots, err := seq.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	starts := make([]time.Time, len(slots))
	for i, s := range slots {
		starts[i] = s.Start
	}
	return starts
}

func wantTimes(t *testing.T, got []time.Time, want ...time.Time) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d slots %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("slot %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestListAvailableSlotsWorkedExample(t *testing.T) {
	store := newMemStore()
	doctorID, _ := seedWorkedExample(t, store)
	svc := newTestService(store)

	got := slotStarts(t, svc, doctorID, monday, monday, 30)
	wantTimes(t, got,
		monday.Add(9*time.Hour),
		monday.Add(10*time.Hour+30*time.Minute),
		monday.Add(11*time.Hour),
		monday.Add(11*time.Hour+30*time.Minute),
	)
}

func TestListAvailableSlotsExcludesStartedToday(t *testing.T) {
	store := newMemStore()
	doctorID, _ := seedWorkedExample(t, store)
	svc := newTestService(store)
	svc.now = func() time.Time { return monday.Add(10 * time.Hour) } // 10:00

	got := slotStarts(t, svc, doctorID, monday, monday, 30)
	wantTimes(t, got,
		monday.Add(10*time.Hour+30*time.Minute),
		monday.Add(11*time.Hour),
		monday.Add(11*time.Hour+30*time.Minute),
	)
}

func TestListAvailableSlotsOccasionalOnly(t *testing.T) {
	store := newMemStore()
	doctorID := store.addDoctor()
	store.addOccasional(doctorID, tuesday, minutes(13, 0), minutes(14, 0))
	svc := newTestService(store)

	got := slotStarts(t, svc, doctorID, tuesday, tuesday, 30)
	wantTimes(t, got,
		tuesday.Add(13*time.Hour),
		tuesday.Add(13*time.Hour+30*time.Minute),
	)
}

func TestListAvailableSlotsMultiDay(t *testing.T) {
	store := newMemStore()
	doctorID, _ := seedWorkedExample(t, store)
	store.addOccasional(doctorID, tuesday, minutes(13, 0), minutes(14, 0))
	svc := newTestService(store)

	got := slotStarts(t, svc, doctorID, monday, tuesday, 30)
	if len(got) != 6 {
		t.Fatalf("got %d slots across two days, want 6: %v", len(got), got)
	}
	if !got[4].Equal(tuesday.Add(13 * time.Hour)) {
		t.Errorf("first Tuesday slot = %v", got[4])
	}
}

func TestListAvailableSlotsEmptyWithoutSchedule(t *testing.T) {
	store := newMemStore()
	doctorID := store.addDoctor()
	svc := newTestService(store)

	if got := slotStarts(t, svc, doctorID, monday, monday, 30); len(got) != 0 {
		t.Errorf("doctor without schedule should have no slots, got %v", got)
	}
}

func TestListAvailableSlotsFullDayClosure(t *testing.T) {
	store := newMemStore()
	doctorID, _ := seedWorkedExample(t, store)
	store.addFullDayClosure(doctorID, monday)
	svc := newTestService(store)

	if got := slotStarts(t, svc, doctorID, monday, monday, 30); len(got) != 0 {
		t.Errorf("full-day closure should leave no slots, got %v", got)
	}
}

func TestListAvailableSlotsUnknownDoctor(t *testing.T) {
	svc := newTestService(newMemStore())
	if _, err := svc.ListAvailableSlots(context.Background(), uuid.New(), monday, monday, 30); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestListAvailableSlotsRejectsBadRange(t *testing.T) {
	store := newMemStore()
	doctorID := store.addDoctor()
	svc := newTestService(store)

	if _, err := svc.ListAvailableSlots(context.Background(), doctorID, tuesday, monday, 30); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("to before from should fail, got %v", err)
	}
	if _, err := svc.ListAvailableSlots(context.Background(), doctorID, monday, monday, -5); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("negative duration should fail, got %v", err)
	}
}

func TestBookSlotThenListExcludesIt(t *testing.T) {
	store := newMemStore()
	doctorID, patientID := seedWorkedExample(t, store)
	svc := newTestService(store)

	e, err := svc.BookSlot(context.Background(), Request{
		DoctorID:        doctorID,
		PatientID:       patientID,
		Start:           monday.Add(11 * time.Hour),
		DurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("BookSlot: %v", err)
	}
	if e.Status != encounter.StatusScheduled {
		t.Errorf("Status = %q", e.Status)
	}

	got := slotStarts(t, svc, doctorID, monday, monday, 30)
	wantTimes(t, got,
		monday.Add(9*time.Hour),
		monday.Add(10*time.Hour+30*time.Minute),
		monday.Add(11*time.Hour+30*time.Minute),
	)
}

func TestBookSlotConflicts(t *testing.T) {
	store := newMemStore()
	doctorID, patientID := seedWorkedExample(t, store)
	svc := newTestService(store)
	ctx := context.Background()

	// Already booked.
	if _, err := svc.BookSlot(ctx, Request{DoctorID: doctorID, PatientID: patientID,
		Start: monday.Add(9*time.Hour + 30*time.Minute), DurationMinutes: 30}); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("booked slot should conflict, got %v", err)
	}
	// Inside a closure.
	if _, err := svc.BookSlot(ctx, Request{DoctorID: doctorID, PatientID: patientID,
		Start: monday.Add(10 * time.Hour), DurationMinutes: 30}); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("closed slot should conflict, got %v", err)
	}
	// Off the grid.
	if _, err := svc.BookSlot(ctx, Request{DoctorID: doctorID, PatientID: patientID,
		Start: monday.Add(9*time.Hour + 10*time.Minute), DurationMinutes: 30}); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("unaligned slot should conflict, got %v", err)
	}
	// Outside working hours.
	if _, err := svc.BookSlot(ctx, Request{DoctorID: doctorID, PatientID: patientID,
		Start: monday.Add(15 * time.Hour), DurationMinutes: 30}); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("out-of-hours slot should conflict, got %v", err)
	}
}

func TestBookSlotPast(t *testing.T) {
	store := newMemStore()
	doctorID, patientID := seedWorkedExample(t, store)
	svc := newTestService(store)
	svc.now = func() time.Time { return monday.Add(11 * time.Hour) }

	if _, err := svc.BookSlot(context.Background(), Request{DoctorID: doctorID, PatientID: patientID,
		Start: monday.Add(9 * time.Hour), DurationMinutes: 30}); !errors.Is(err, ErrPastSlot) {
		t.Errorf("expected ErrPastSlot, got %v", err)
	}
}

func TestBookSlotUnknownParties(t *testing.T) {
	store := newMemStore()
	doctorID, patientID := seedWorkedExample(t, store)
	svc := newTestService(store)
	ctx := context.Background()
	start := monday.Add(11 * time.Hour)

	if _, err := svc.BookSlot(ctx, Request{DoctorID: uuid.New(), PatientID: patientID,
		Start: start, DurationMinutes: 30}); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}
	if _, err := svc.BookSlot(ctx, Request{DoctorID: doctorID, PatientID: uuid.New(),
		Start: start, DurationMinutes: 30}); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestCancelRestoresSlot(t *testing.T) {
	store := newMemStore()
	doctorID, patientID := seedWorkedExample(t, store)
	svc := newTestService(store)
	ctx := context.Background()
	start := monday.Add(11 * time.Hour)

	e, err := svc.BookSlot(ctx, Request{DoctorID: doctorID, PatientID: patientID,
		Start: start, DurationMinutes: 30})
	if err != nil {
		t.Fatalf("BookSlot: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, e.ID, nil)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != encounter.StatusCancelled {
		t.Errorf("Status = %q", cancelled.Status)
	}

	got := slotStarts(t, svc, doctorID, monday, monday, 30)
	found := false
	for _, s := range got {
		if s.Equal(start) {
			found = true
		}
	}
	if !found {
		t.Errorf("cancelled slot should be available again, got %v", got)
	}

	// And it can be booked again.
	if _, err := svc.BookSlot(ctx, Request{DoctorID: doctorID, PatientID: patientID,
		Start: start, DurationMinutes: 30}); err != nil {
		t.Errorf("rebooking a cancelled slot should succeed: %v", err)
	}
}

func TestCancelMissingBooking(t *testing.T) {
	svc := newTestService(newMemStore())
	if _, err := svc.Cancel(context.Background(), uuid.New(), nil); !errors.Is(err, encounter.ErrNotFound) {
		t.Errorf("expected encounter.ErrNotFound, got %v", err)
	}
}

func TestConcurrentBookingSingleWinner(t *testing.T) {
	store := newMemStore()
	doctorID, patientID := seedWorkedExample(t, store)
	svc := newTestService(store)
	start := monday.Add(11 * time.Hour)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.BookSlot(context.Background(), Request{
				DoctorID:        doctorID,
				PatientID:       patientID,
				Start:           start,
				DurationMinutes: 30,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflict int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrSlotUnavailable):
			conflict++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Errorf("got %d successes and %d conflicts, want exactly one of each", ok, conflict)
	}
}

func TestDayScheduleAnnotatesBookings(t *testing.T) {
	store := newMemStore()
	doctorID, _ := seedWorkedExample(t, store)
	svc := newTestService(store)

	slots, err := svc.DaySchedule(context.Background(), doctorID, monday, 30)
	if err != nil {
		t.Fatalf("DaySchedule: %v", err)
	}
	// Open grid: 09:00, 09:30, 10:30, 11:00, 11:30 (10:00 is closed).
	if len(slots) != 5 {
		t.Fatalf("got %d grid slots, want 5: %+v", len(slots), slots)
	}

	byStart := make(map[int]Slot)
	for _, s := range slots {
		byStart[s.Start.Hour()*60+s.Start.Minute()] = s
	}

	booked, ok := byStart[minutes(9, 30)]
	if !ok || booked.Status != SlotBooked {
		t.Fatalf("09:30 should be booked: %+v", booked)
	}
	if booked.PatientName == nil || *booked.PatientName != "Ana Lima" {
		t.Errorf("booked slot should carry patient name, got %+v", booked.PatientName)
	}
	if booked.EncounterID == nil {
		t.Error("booked slot should carry encounter id")
	}

	if free := byStart[minutes(11, 0)]; free.Status != SlotAvailable {
		t.Errorf("11:00 should be available: %+v", free)
	}
}

func TestSlotsKeepWallClockOnDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	store := newMemStore()
	doctorID := store.addDoctor()
	patientID := store.addPatient("Ana Lima")
	store.addRecurring(doctorID, time.Sunday, minutes(9, 0), minutes(12, 0))

	svc := NewService(store, memTx{store: store}, memCanceller{store: store}, zerolog.Nop(), Options{
		DefaultDurationMinutes: 30,
		Location:               loc,
	})
	// Clocks jump 02:00 -> 03:00 on this date, so midnight and the morning
	// slots sit on different UTC offsets.
	springForward := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)
	svc.now = func() time.Time { return time.Date(2026, 3, 8, 8, 0, 0, 0, loc) }

	got := slotStarts(t, svc, doctorID, springForward, springForward, 30)
	if len(got) != 6 {
		t.Fatalf("got %d slots, want 6: %v", len(got), got)
	}
	for i, s := range got {
		wantMin := minutes(9, 0) + i*30
		if gotMin := s.In(loc).Hour()*60 + s.In(loc).Minute(); gotMin != wantMin {
			t.Errorf("slot %d wall clock = %02d:%02d, want %02d:%02d",
				i, gotMin/60, gotMin%60, wantMin/60, wantMin%60)
		}
	}

	// A listed slot must be bookable as returned.
	if _, err := svc.BookSlot(context.Background(), Request{
		DoctorID:        doctorID,
		PatientID:       patientID,
		Start:           got[0],
		DurationMinutes: 30,
	}); err != nil {
		t.Errorf("booking the first listed slot should succeed, got %v", err)
	}
}

func TestDefaultDurationApplies(t *testing.T) {
	store := newMemStore()
	doctorID := store.addDoctor()
	store.addRecurring(doctorID, time.Monday, minutes(9, 0), minutes(10, 0))
	svc := newTestService(store)

	got := slotStarts(t, svc, doctorID, monday, monday, 0)
	wantTimes(t, got,
		monday.Add(9*time.Hour),
		monday.Add(9*time.Hour+30*time.Minute),
	)
}
