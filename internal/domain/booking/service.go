package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-api/internal/domain/encounter"
	"github.com/clinicdesk/clinic-api/internal/platform/interval"
)

// Options tunes the slot engine. Duration is the grid step used when a
// request does not name one; Align shifts the grid anchor within the hour.
type Options struct {
	DefaultDurationMinutes int
	AlignMinutes           int
	Location               *time.Location
}

type Service struct {
	store     Store
	tx        Tx
	canceller Canceller
	log       zerolog.Logger
	opts      Options

	// now is swappable for tests.
	now func() time.Time
}

func NewService(store Store, tx Tx, canceller Canceller, log zerolog.Logger, opts Options) *Service {
	if opts.DefaultDurationMinutes <= 0 {
		opts.DefaultDurationMinutes = 30
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		store:     store,
		tx:        tx,
		canceller: canceller,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

// ParseDate parses a YYYY-MM-DD date in the clinic time zone.
func (s *Service) ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, s.opts.Location)
}

// Today returns midnight of the current day in the clinic time zone.
func (s *Service) Today() time.Time {
	return s.dateOf(s.now())
}

func (s *Service) dateOf(t time.Time) time.Time {
	t = t.In(s.opts.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.opts.Location)
}

func (s *Service) minuteOfDay(t time.Time) int {
	t = t.In(s.opts.Location)
	return t.Hour()*60 + t.Minute()
}

// timeAt places a minute-of-day on a date as clinic wall-clock time. It is
// the inverse of minuteOfDay, which date.Add is not on days where a DST
// transition shifts the offset between midnight and the slot.
func (s *Service) timeAt(date time.Time, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minute/60, minute%60, 0, 0, s.opts.Location)
}

func (s *Service) resolveDuration(duration int) (int, error) {
	if duration == 0 {
		return s.opts.DefaultDurationMinutes, nil
	}
	if duration < 0 || duration > interval.MinutesPerDay {
		return 0, fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrInvalidSlot, interval.MinutesPerDay)
	}
	return duration, nil
}

// dayInputs loads everything that shapes the doctor's day. Encounter windows
// are clipped to the day so an entry straddling midnight cannot produce an
// out-of-range minute.
func (s *Service) dayInputs(ctx context.Context, doctorID uuid.UUID, date time.Time) (DayInputs, []Visit, error) {
	var in DayInputs

	recurring, err := s.store.RecurringForWeekday(ctx, doctorID, date.Weekday())
	if err != nil {
		return in, nil, err
	}
	occasional, err := s.store.OccasionalForDate(ctx, doctorID, date)
	if err != nil {
		return in, nil, err
	}
	closures, fullDay, err := s.store.ClosuresForDate(ctx, doctorID, date)
	if err != nil {
		return in, nil, err
	}

	dayEnd := date.AddDate(0, 0, 1)
	visits, err := s.store.ActiveVisits(ctx, doctorID, date, dayEnd)
	if err != nil {
		return in, nil, err
	}

	var booked []interval.Range
	for _, v := range visits {
		start := s.minuteOfDay(v.Encounter.ScheduledAt)
		end := start + v.Encounter.DurationMinutes
		if end > interval.MinutesPerDay {
			end = interval.MinutesPerDay
		}
		if start < end {
			booked = append(booked, interval.Range{Start: start, End: end})
		}
	}

	in = DayInputs{
		Recurring:     recurring,
		Occasional:    occasional,
		Closures:      closures,
		FullDayClosed: fullDay,
		Booked:        booked,
	}
	return in, visits, nil
}

// ListAvailableSlots returns the bookable slots for a doctor between two
// dates (inclusive), lazily one day at a time. Slots that already started
// are never offered.
func (s *Service) ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, from, to time.Time, duration int) (*SlotSeq, error) {
	duration, err := s.resolveDuration(duration)
	if err != nil {
		return nil, err
	}
	from, to = s.dateOf(from), s.dateOf(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to precedes from", ErrInvalidSlot)
	}

	exists, err := s.store.DoctorExists(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDoctorNotFound
	}

	now := s.now()
	loadDay := func(date time.Time) ([]Slot, error) {
		in, _, err := s.dayInputs(ctx, doctorID, date)
		if err != nil {
			return nil, err
		}
		var slots []Slot
		for _, startMin := range Quantize(FreeIntervals(in), duration, s.opts.AlignMinutes) {
			start := s.timeAt(date, startMin)
			if !start.After(now) {
				continue
			}
			slots = append(slots, Slot{
				DoctorID:        doctorID,
				Start:           start,
				DurationMinutes: duration,
				Status:          SlotAvailable,
			})
		}
		return slots, nil
	}

	return newSlotSeq(from, to, loadDay), nil
}

// DaySchedule returns the full grid for one day, booked slots included. A
// grid slot overlapping an active encounter carries that encounter's id and
// patient name.
func (s *Service) DaySchedule(ctx context.Context, doctorID uuid.UUID, date time.Time, duration int) ([]Slot, error) {
	duration, err := s.resolveDuration(duration)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.DoctorExists(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDoctorNotFound
	}

	date = s.dateOf(date)
	in, visits, err := s.dayInputs(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	var slots []Slot
	for _, startMin := range Quantize(OpenIntervals(in), duration, s.opts.AlignMinutes) {
		slot := Slot{
			DoctorID:        doctorID,
			Start:           s.timeAt(date, startMin),
			DurationMinutes: duration,
			Status:          SlotAvailable,
		}
		slotRange := interval.Range{Start: startMin, End: startMin + duration}
		for _, v := range visits {
			visitStart := s.minuteOfDay(v.Encounter.ScheduledAt)
			visitRange := interval.Range{Start: visitStart, End: visitStart + v.Encounter.DurationMinutes}
			if slotRange.Overlaps(visitRange) {
				slot.Status = SlotBooked
				id := v.Encounter.ID
				name := v.PatientName
				slot.EncounterID = &id
				slot.PatientName = &name
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// BookSlot books a slot for a patient. The check and the insert run in one
// transaction holding a per-doctor advisory lock, so two requests for the
// same slot cannot both succeed: the second recomputes availability after
// the first commits and sees the slot gone.
func (s *Service) BookSlot(ctx context.Context, req Request) (*encounter.Encounter, error) {
	duration, err := s.resolveDuration(req.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if req.Start.IsZero() {
		return nil, fmt.Errorf("%w: start is required", ErrInvalidSlot)
	}
	if !req.Start.After(s.now()) {
		return nil, ErrPastSlot
	}

	date := s.dateOf(req.Start)
	startMin := s.minuteOfDay(req.Start)
	if startMin+duration > interval.MinutesPerDay {
		return nil, fmt.Errorf("%w: slot crosses midnight", ErrInvalidSlot)
	}

	var booked *encounter.Encounter
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.store.LockDoctor(ctx, req.DoctorID); err != nil {
			return err
		}

		exists, err := s.store.DoctorExists(ctx, req.DoctorID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrDoctorNotFound
		}
		exists, err = s.store.PatientExists(ctx, req.PatientID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrPatientNotFound
		}

		in, _, err := s.dayInputs(ctx, req.DoctorID, date)
		if err != nil {
			return err
		}
		if !slotOffered(Quantize(FreeIntervals(in), duration, s.opts.AlignMinutes), startMin) {
			return ErrSlotUnavailable
		}

		e := &encounter.Encounter{
			DoctorID:        req.DoctorID,
			PatientID:       req.PatientID,
			Status:          encounter.StatusScheduled,
			ScheduledAt:     req.Start,
			DurationMinutes: duration,
			Reason:          req.Reason,
		}
		if err := s.store.CreateEncounter(ctx, e); err != nil {
			return err
		}
		booked = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("encounter_id", booked.ID.String()).
		Str("doctor_id", req.DoctorID.String()).
		Time("start", booked.ScheduledAt).
		Int("duration_minutes", duration).
		Msg("slot booked")
	return booked, nil
}

func slotOffered(starts []int, want int) bool {
	for _, s := range starts {
		if s == want {
			return true
		}
	}
	return false
}

// Cancel releases a booked slot. The freed window shows up as available on
// the next listing.
func (s *Service) Cancel(ctx context.Context, encounterID uuid.UUID, changedBy *uuid.UUID) (*encounter.Encounter, error) {
	e, err := s.canceller.UpdateStatus(ctx, encounterID, encounter.StatusCancelled, changedBy)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("encounter_id", encounterID.String()).
		Msg("booking cancelled")
	return e, nil
}
