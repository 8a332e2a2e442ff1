package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sophia-kim26/koreanschool-attendance/internal/usecase"
)

// CalendarHandler exposes the selected session date set.
type CalendarHandler struct {
	calendar *usecase.CalendarService
}

// NewCalendarHandler constructs CalendarHandler.
func NewCalendarHandler(calendar *usecase.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

// Replace swaps the whole selected-date set atomically.
func (h *CalendarHandler) Replace(c *gin.Context) {
	var req CalendarDatesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "dates must be a list of YYYY-MM-DD strings"))
		return
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, raw := range req.Dates {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "dates must be formatted YYYY-MM-DD"))
			return
		}
		dates = append(dates, parsed)
	}

	if err := h.calendar.ReplaceSelectedDates(c.Request.Context(), dates); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "replacing calendar dates failed"))
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns the selected dates in ascending order.
func (h *CalendarHandler) List(c *gin.Context) {
	dates, err := h.calendar.ListSelectedDates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "listing calendar dates failed"))
		return
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(dateLayout))
	}

	c.JSON(http.StatusOK, CalendarDatesPayload{Dates: out})
}
