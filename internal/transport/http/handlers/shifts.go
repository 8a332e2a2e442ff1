package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sophia-kim26/koreanschool-attendance/internal/transport/http/middleware"
	"github.com/sophia-kim26/koreanschool-attendance/internal/usecase"
)

// ShiftHandler exposes the clock state machine and attendance views.
type ShiftHandler struct {
	shifts     *usecase.ShiftService
	attendance *usecase.AttendanceService
}

// NewShiftHandler constructs ShiftHandler.
func NewShiftHandler(shifts *usecase.ShiftService, attendance *usecase.AttendanceService) *ShiftHandler {
	return &ShiftHandler{shifts: shifts, attendance: attendance}
}

var clockErrorCases = []ErrorCase{
	{Err: usecase.ErrWorkerNotFound, Status: http.StatusNotFound, Message: "worker not found"},
	{Err: usecase.ErrWorkerInactive, Status: http.StatusForbidden, Message: "account is deactivated"},
	{Err: usecase.ErrAlreadyOnShift, Status: http.StatusConflict, Message: "worker is already on shift"},
	{Err: usecase.ErrNoOpenShift, Status: http.StatusConflict, Message: "worker has no open shift"},
	{Err: usecase.ErrLocationRejected, Status: http.StatusForbidden, Message: "clock-in is only allowed from approved locations"},
}

// ClockIn opens a shift. The bearer token must belong to the worker being
// clocked in; the source address comes from the connection, not the body.
func (h *ShiftHandler) ClockIn(c *gin.Context) {
	var req ClockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.WorkerID <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "worker_id is required"))
		return
	}
	if !h.tokenMatches(c, req.WorkerID) {
		return
	}

	shift, err := h.shifts.ClockIn(c.Request.Context(), req.WorkerID, c.ClientIP())
	if err != nil {
		RespondWithMappedError(c, err, clockErrorCases, http.StatusInternalServerError, "clock-in failed")
		return
	}

	c.JSON(http.StatusCreated, newShiftView(*shift, time.Now().UTC()))
}

// ClockOut closes the worker's open shift.
func (h *ShiftHandler) ClockOut(c *gin.Context) {
	var req ClockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.WorkerID <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "worker_id is required"))
		return
	}
	if !h.tokenMatches(c, req.WorkerID) {
		return
	}

	shift, err := h.shifts.ClockOut(c.Request.Context(), req.WorkerID)
	if err != nil {
		RespondWithMappedError(c, err, clockErrorCases, http.StatusInternalServerError, "clock-out failed")
		return
	}

	c.JSON(http.StatusOK, newShiftView(*shift, time.Now().UTC()))
}

// Active returns the worker's open shift, or a null shift when idle.
func (h *ShiftHandler) Active(c *gin.Context) {
	workerID, ok := parseQueryID(c, "worker_id")
	if !ok {
		return
	}

	shift, err := h.shifts.OpenShift(c.Request.Context(), workerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "active shift lookup failed"))
		return
	}

	resp := ActiveShiftResponse{}
	if shift != nil {
		view := newShiftView(*shift, time.Now().UTC())
		resp.Shift = &view
	}

	c.JSON(http.StatusOK, resp)
}

// CreateManual records an administrator-entered shift with explicit
// timestamps.
func (h *ShiftHandler) CreateManual(c *gin.Context) {
	var req ManualShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.WorkerID <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "worker_id and clock_in are required"))
		return
	}

	shift, err := h.shifts.CreateManual(c.Request.Context(), usecase.ManualShiftInput{
		WorkerID: req.WorkerID,
		ClockIn:  req.ClockIn,
		ClockOut: req.ClockOut,
		Notes:    req.Notes,
	})
	if err != nil {
		RespondWithMappedError(c, err, clockErrorCases, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, newShiftView(*shift, time.Now().UTC()))
}

// Update applies a partial patch to an existing shift record.
func (h *ShiftHandler) Update(c *gin.Context) {
	shiftID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "malformed shift patch"))
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	shift, err := h.shifts.Update(c.Request.Context(), shiftID, patch)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrShiftNotFound, Status: http.StatusNotFound, Message: "shift not found"},
			{Err: usecase.ErrAlreadyOnShift, Status: http.StatusConflict, Message: "worker already has an open shift"},
		}, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, newShiftView(*shift, time.Now().UTC()))
}

// ListForWorker returns the worker's shifts, newest first.
func (h *ShiftHandler) ListForWorker(c *gin.Context) {
	workerID, ok := parseID(c, "id")
	if !ok {
		return
	}

	shifts, err := h.shifts.ListForWorker(c.Request.Context(), workerID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrWorkerNotFound, Status: http.StatusNotFound, Message: "worker not found"},
		}, http.StatusInternalServerError, "listing shifts failed")
		return
	}

	now := time.Now().UTC()
	views := make([]ShiftView, 0, len(shifts))
	for _, shift := range shifts {
		views = append(views, newShiftView(shift, now))
	}

	c.JSON(http.StatusOK, views)
}

// Attendance reports the Present/Absent answer for one worker and date.
// Without a date parameter the current day is used.
func (h *ShiftHandler) Attendance(c *gin.Context) {
	workerID, ok := parseID(c, "id")
	if !ok {
		return
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "date must be formatted YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	status, err := h.attendance.DailyStatus(c.Request.Context(), workerID, date)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrWorkerNotFound, Status: http.StatusNotFound, Message: "worker not found"},
		}, http.StatusInternalServerError, "attendance lookup failed")
		return
	}

	c.JSON(http.StatusOK, AttendanceResponse{
		WorkerID: workerID,
		Date:     date.Format(dateLayout),
		Status:   string(status),
	})
}

// Hours reports the worker's accumulated fractional hours.
func (h *ShiftHandler) Hours(c *gin.Context) {
	workerID, ok := parseID(c, "id")
	if !ok {
		return
	}

	total, err := h.attendance.TotalHours(c.Request.Context(), workerID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrWorkerNotFound, Status: http.StatusNotFound, Message: "worker not found"},
		}, http.StatusInternalServerError, "hours lookup failed")
		return
	}

	c.JSON(http.StatusOK, HoursResponse{WorkerID: workerID, TotalHours: total})
}

// tokenMatches rejects clock calls whose bearer token belongs to a
// different worker.
func (h *ShiftHandler) tokenMatches(c *gin.Context, workerID int64) bool {
	authedID, ok := middleware.AuthenticatedWorkerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "missing authenticated worker"))
		return false
	}
	if authedID != workerID {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "token does not belong to this worker"))
		return false
	}
	return true
}

func parseQueryID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, param+" must be a positive integer"))
		return 0, false
	}
	return id, true
}
