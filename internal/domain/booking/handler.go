package booking

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careslot/careslot/internal/platform/apperror"
	"github.com/careslot/careslot/internal/platform/auth"
	"github.com/careslot/careslot/pkg/dateonly"
	"github.com/careslot/careslot/pkg/pagination"
	"github.com/careslot/careslot/pkg/timeofday"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleStaff, auth.RoleDoctor, auth.RolePatient))
	read.GET("/sessions/:id/available-beds", h.AvailableBeds)
	read.GET("/availability", h.AdHocAvailability)
	read.GET("/appointments", h.ListAppointments)
	read.GET("/appointments/:id", h.GetAppointment)

	claim := api.Group("", auth.RequireRole(auth.RoleStaff, auth.RolePatient))
	claim.POST("/appointments", h.Claim)
	claim.POST("/appointments/:id/cancel", h.Cancel)
	claim.POST("/appointments/:id/reschedule", h.Reschedule)

	clinical := api.Group("", auth.RequireRole(auth.RoleStaff, auth.RoleDoctor))
	clinical.POST("/appointments/:id/complete", h.Complete)
	clinical.POST("/appointments/:id/no-show", h.MarkNoShow)
}

func (h *Handler) AvailableBeds(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	beds, err := h.svc.AvailableBeds(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, beds)
}

func (h *Handler) AdHocAvailability(c echo.Context) error {
	centerID, err := uuid.Parse(c.QueryParam("center_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "center_id is required")
	}
	date, err := dateonly.Parse(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required as YYYY-MM-DD")
	}
	start, err := timeofday.Parse(c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start is required as HH:MM")
	}
	end, err := timeofday.Parse(c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end is required as HH:MM")
	}

	beds, err := h.svc.AdHocAvailability(c.Request().Context(), centerID, date, start, end)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, beds)
}

func (h *Handler) Claim(c echo.Context) error {
	var req ClaimRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// The authenticated subject is the requester when the body names no
	// patient.
	if req.PatientID == uuid.Nil {
		if uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
			req.PatientID = uid
		}
	}
	a, err := h.svc.Claim(c.Request().Context(), req)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	var f Filter
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = &id
	}
	if v := c.QueryParam("session_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid session_id")
		}
		f.SessionID = &id
	}
	if v := c.QueryParam("center_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid center_id")
		}
		f.CenterID = &id
	}
	if v := c.QueryParam("status"); v != "" {
		st := Status(v)
		f.Status = &st
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAppointments(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.lifecycle(c, h.svc.Cancel)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.lifecycle(c, h.svc.Complete)
}

func (h *Handler) MarkNoShow(c echo.Context) error {
	return h.lifecycle(c, h.svc.MarkNoShow)
}

func (h *Handler) lifecycle(c echo.Context, op func(ctx context.Context, id uuid.UUID) (*Appointment, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := op(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

type rescheduleRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	BedID     uuid.UUID `json:"bed_id"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.SessionID == uuid.Nil || req.BedID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id and bed_id are required")
	}
	a, err := h.svc.Reschedule(c.Request().Context(), id, req.SessionID, req.BedID)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}
