package appointment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handler maps the REST surface onto the service. It is stateless; every
// request is a single bounded store call.
type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Static segments before :id so "stats" is never parsed as an id.
	api.GET("/appointments", h.List)
	api.GET("/appointments/stats", h.Stats)
	api.GET("/appointments/upcoming", h.Upcoming)
	api.GET("/appointments/:id", h.Get)
	api.POST("/appointments", h.Create)
	api.PATCH("/appointments/:id", h.Update)
	api.DELETE("/appointments/:id", h.Delete)
	api.GET("/availability", h.Availability)
	api.GET("/doctors", h.Doctors)
	api.GET("/specialties", h.Specialties)
}

type messageBody struct {
	Message string `json:"message"`
}

type validationBody struct {
	Message string      `json:"message"`
	Errors  FieldErrors `json:"errors"`
}

func (h *Handler) List(c echo.Context) error {
	f := Filter{
		Status: c.QueryParam("status"),
		Doctor: c.QueryParam("doctor"),
	}
	if raw := c.QueryParam("from"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, messageBody{"Invalid from date"})
		}
		f.From = &t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, messageBody{"Invalid to date"})
		}
		f.To = &t
	}

	appts, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return h.storeFailure(c, err, "Failed to fetch appointments")
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, messageBody{"Invalid appointment ID"})
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, messageBody{"Appointment not found"})
	}
	if err != nil {
		return h.storeFailure(c, err, "Failed to fetch appointment")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageBody{"Invalid request body"})
	}
	a, ferr, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return h.storeFailure(c, err, "Failed to create appointment")
	}
	if ferr != nil {
		return c.JSON(http.StatusBadRequest, validationBody{"Validation failed", ferr})
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, messageBody{"Invalid appointment ID"})
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageBody{"Invalid request body"})
	}
	a, ferr, err := h.svc.Update(c.Request().Context(), id, req)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, messageBody{"Appointment not found"})
	}
	if err != nil {
		return h.storeFailure(c, err, "Failed to update appointment")
	}
	if ferr != nil {
		return c.JSON(http.StatusBadRequest, validationBody{"Validation failed", ferr})
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, messageBody{"Invalid appointment ID"})
	}
	err := h.svc.Delete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, messageBody{"Appointment not found"})
	}
	if err != nil {
		return h.storeFailure(c, err, "Failed to delete appointment")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return h.storeFailure(c, err, "Failed to fetch appointments")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) Upcoming(c echo.Context) error {
	appts, err := h.svc.UpcomingList(c.Request().Context())
	if err != nil {
		return h.storeFailure(c, err, "Failed to fetch appointments")
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) Doctors(c echo.Context) error {
	doctors, err := h.svc.Doctors(c.Request().Context())
	if err != nil {
		return h.storeFailure(c, err, "Failed to fetch appointments")
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *Handler) Specialties(c echo.Context) error {
	specialties, err := h.svc.Specialties(c.Request().Context())
	if err != nil {
		return h.storeFailure(c, err, "Failed to fetch appointments")
	}
	return c.JSON(http.StatusOK, specialties)
}

func (h *Handler) Availability(c echo.Context) error {
	doctor := c.QueryParam("doctor")
	if doctor == "" {
		return c.JSON(http.StatusBadRequest, messageBody{"doctor query parameter required"})
	}
	start, err := parseDate(c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageBody{"Invalid start date"})
	}
	duration := DefaultSlotDuration
	if raw := c.QueryParam("durationHours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return c.JSON(http.StatusBadRequest, messageBody{"Invalid durationHours"})
		}
		duration = time.Duration(hours) * time.Hour
	}

	available, err := h.svc.Availability(c.Request().Context(), doctor, start, duration)
	if err != nil {
		return h.storeFailure(c, err, "Failed to fetch appointments")
	}
	return c.JSON(http.StatusOK, map[string]bool{"available": available})
}

// storeFailure logs the underlying error and answers with a fixed message so
// infrastructure details never reach the client.
func (h *Handler) storeFailure(c echo.Context, err error, message string) error {
	rid, _ := c.Get("request_id").(string)
	h.logger.Error().Err(err).
		Str("request_id", rid).
		Str("path", c.Request().URL.Path).
		Msg("store failure")
	return c.JSON(http.StatusInternalServerError, messageBody{message})
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
