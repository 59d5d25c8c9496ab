package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinic-api/internal/domain/encounter"
	"github.com/clinicdesk/clinic-api/internal/platform/auth"
	"github.com/clinicdesk/clinic-api/internal/platform/interval"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "doctor", "front_desk"))
	readGroup.GET("/doctors/:id/slots", h.ListSlots)

	writeGroup := api.Group("", auth.RequireRole("admin", "front_desk"))
	writeGroup.POST("/bookings", h.Book)
	writeGroup.DELETE("/bookings/:id", h.Cancel)
}

type slotsResponse struct {
	DoctorID        uuid.UUID `json:"doctor_id"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	DurationMinutes int       `json:"duration_minutes"`
	Slots           []Slot    `json:"slots"`
}

// ListSlots serves GET /doctors/:id/slots?from&to&duration&include=booked.
// Dates default to today; include=booked returns the full day grid with
// booked slots annotated (single day only).
func (h *Handler) ListSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	from := h.svc.Today()
	if v := c.QueryParam("from"); v != "" {
		if from, err = h.svc.ParseDate(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
		}
	}
	to := from
	if v := c.QueryParam("to"); v != "" {
		if to, err = h.svc.ParseDate(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
		}
	}

	duration := 0
	if v := c.QueryParam("duration"); v != "" {
		if duration, err = strconv.Atoi(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid duration")
		}
	}

	ctx := c.Request().Context()
	var slots []Slot
	if c.QueryParam("include") == "booked" {
		slots, err = h.svc.DaySchedule(ctx, doctorID, from, duration)
	} else {
		var seq *SlotSeq
		seq, err = h.svc.ListAvailableSlots(ctx, doctorID, from, to, duration)
		if err == nil {
			slots, err = seq.Collect()
		}
	}
	if err != nil {
		return mapBookingErr(err)
	}

	if duration == 0 {
		duration = h.svc.opts.DefaultDurationMinutes
	}
	return c.JSON(http.StatusOK, slotsResponse{
		DoctorID:        doctorID,
		From:            from.Format("2006-01-02"),
		To:              to.Format("2006-01-02"),
		DurationMinutes: duration,
		Slots:           slots,
	})
}

func (h *Handler) Book(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DoctorID == uuid.Nil || req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id and patient_id are required")
	}
	e, err := h.svc.BookSlot(c.Request().Context(), req)
	if err != nil {
		return mapBookingErr(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var changedBy *uuid.UUID
	if uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
		changedBy = &uid
	}

	e, err := h.svc.Cancel(c.Request().Context(), id, changedBy)
	if err != nil {
		return mapBookingErr(err)
	}
	return c.JSON(http.StatusOK, e)
}

func mapBookingErr(err error) error {
	switch {
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, encounter.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	case errors.Is(err, ErrSlotUnavailable):
		return echo.NewHTTPError(http.StatusConflict, "slot unavailable")
	case errors.Is(err, ErrPastSlot):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "slot is in the past")
	case errors.Is(err, encounter.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidSlot), errors.Is(err, interval.ErrInvalidRange):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
