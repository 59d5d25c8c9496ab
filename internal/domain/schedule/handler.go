package schedule

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinic-api/internal/platform/auth"
	"github.com/clinicdesk/clinic-api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "doctor", "front_desk"))
	readGroup.GET("/doctors/:id/schedules/recurring", h.ListRecurring)
	readGroup.GET("/doctors/:id/schedules/occasional", h.ListOccasional)
	readGroup.GET("/doctors/:id/closures", h.ListClosures)
	readGroup.GET("/schedules/recurring/:id", h.GetRecurring)
	readGroup.GET("/schedules/occasional/:id", h.GetOccasional)
	readGroup.GET("/closures/:id", h.GetClosure)

	writeGroup := api.Group("", auth.RequireRole("admin", "front_desk"))
	writeGroup.POST("/schedules/recurring", h.CreateRecurring)
	writeGroup.PUT("/schedules/recurring/:id", h.UpdateRecurring)
	writeGroup.DELETE("/schedules/recurring/:id", h.DeleteRecurring)
	writeGroup.POST("/schedules/occasional", h.CreateOccasional)
	writeGroup.DELETE("/schedules/occasional/:id", h.DeleteOccasional)
	writeGroup.POST("/closures", h.CreateClosure)
	writeGroup.DELETE("/closures/:id", h.DeleteClosure)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func mapErr(err error, what string) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// -- Recurring --

func (h *Handler) CreateRecurring(c echo.Context) error {
	var r RecurringSchedule
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRecurring(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetRecurring(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.GetRecurring(c.Request().Context(), id)
	if err != nil {
		return mapErr(err, "recurring schedule")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) UpdateRecurring(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var r RecurringSchedule
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r.ID = id
	if err := h.svc.UpdateRecurring(c.Request().Context(), &r); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "recurring schedule not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteRecurring(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRecurring(c.Request().Context(), id); err != nil {
		return mapErr(err, "recurring schedule")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListRecurring(c echo.Context) error {
	doctorID, err := parseID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListRecurringByDoctor(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// -- Occasional --

func (h *Handler) CreateOccasional(c echo.Context) error {
	var o OccasionalSchedule
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateOccasional(c.Request().Context(), &o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) GetOccasional(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	o, err := h.svc.GetOccasional(c.Request().Context(), id)
	if err != nil {
		return mapErr(err, "occasional schedule")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) DeleteOccasional(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteOccasional(c.Request().Context(), id); err != nil {
		return mapErr(err, "occasional schedule")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListOccasional(c echo.Context) error {
	doctorID, err := parseID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListOccasionalByDoctor(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.Wrap(pg, total, items))
}

// -- Closures --

func (h *Handler) CreateClosure(c echo.Context) error {
	var w ClosedWindow
	if err := c.Bind(&w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateClosed(c.Request().Context(), &w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *Handler) GetClosure(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	w, err := h.svc.GetClosed(c.Request().Context(), id)
	if err != nil {
		return mapErr(err, "closure")
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) DeleteClosure(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteClosed(c.Request().Context(), id); err != nil {
		return mapErr(err, "closure")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListClosures(c echo.Context) error {
	doctorID, err := parseID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListClosedByDoctor(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.Wrap(pg, total, items))
}
