package center

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careslot/careslot/internal/platform/apperror"
	"github.com/careslot/careslot/internal/platform/auth"
	"github.com/careslot/careslot/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleStaff, auth.RoleDoctor, auth.RolePatient))
	read.GET("/centers", h.ListCenters)
	read.GET("/centers/:id", h.GetCenter)
	read.GET("/centers/:id/hours", h.ListHours)
	read.GET("/centers/:id/beds", h.ListBeds)

	write := api.Group("", auth.RequireRole(auth.RoleAdmin))
	write.POST("/centers", h.CreateCenter)
	write.PUT("/centers/:id", h.UpdateCenter)
	write.PUT("/centers/:id/hours", h.UpsertHours)
	write.POST("/centers/:id/beds", h.CreateBed)
	write.PUT("/beds/:id", h.UpdateBed)
	write.DELETE("/beds/:id", h.DeleteBed)
}

func (h *Handler) CreateCenter(c echo.Context) error {
	var ctr Center
	if err := c.Bind(&ctr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctr.Active = true
	if err := h.svc.CreateCenter(c.Request().Context(), &ctr); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, ctr)
}

func (h *Handler) GetCenter(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctr, err := h.svc.GetCenter(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, ctr)
}

func (h *Handler) UpdateCenter(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var ctr Center
	if err := c.Bind(&ctr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctr.ID = id
	if err := h.svc.UpdateCenter(c.Request().Context(), &ctr); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, ctr)
}

func (h *Handler) ListCenters(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListCenters(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// UpsertHours replaces the operating window for the weekdays present in
// the request body.
func (h *Handler) UpsertHours(c echo.Context) error {
	centerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var entries []Hours
	if err := c.Bind(&entries); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(entries) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no hours provided")
	}
	for i := range entries {
		entries[i].CenterID = centerID
		if err := h.svc.UpsertHours(c.Request().Context(), &entries[i]); err != nil {
			return apperror.ToHTTP(err)
		}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) ListHours(c echo.Context) error {
	centerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListHours(c.Request().Context(), centerID)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateBed(c echo.Context) error {
	centerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var b Bed
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b.CenterID = centerID
	b.Active = true
	if err := h.svc.CreateBed(c.Request().Context(), &b); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) UpdateBed(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var b Bed
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b.ID = id
	if err := h.svc.UpdateBed(c.Request().Context(), &b); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBed(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteBed(c.Request().Context(), id); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListBeds(c echo.Context) error {
	centerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBeds(c.Request().Context(), centerID, pg.Limit, pg.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
