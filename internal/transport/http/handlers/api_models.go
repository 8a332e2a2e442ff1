package handlers

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/domain"
)

const dateLayout = "2006-01-02"

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	pinPattern   = regexp.MustCompile(`^\d{6}$`)
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// WorkerSummary is the API view of a worker. The credential hash never
// appears here.
type WorkerSummary struct {
	ID         int64             `json:"id"`
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	KoreanName *string           `json:"korean_name,omitempty"`
	Email      string            `json:"email"`
	SessionDay domain.SessionDay `json:"session_day"`
	Active     bool              `json:"active"`
	Classroom  *string           `json:"classroom,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func newWorkerSummary(worker domain.Worker) WorkerSummary {
	return WorkerSummary{
		ID:         worker.ID,
		FirstName:  worker.FirstName,
		LastName:   worker.LastName,
		KoreanName: worker.KoreanName,
		Email:      worker.Email,
		SessionDay: worker.SessionDay,
		Active:     worker.Active,
		Classroom:  worker.Classroom,
		CreatedAt:  worker.CreatedAt,
	}
}

// ShiftView is the API view of a shift. ElapsedHours is computed at render
// time against the request clock, so open shifts show a running total.
type ShiftView struct {
	ID           int64                      `json:"id"`
	WorkerID     int64                      `json:"worker_id"`
	ClockIn      time.Time                  `json:"clock_in"`
	ClockOut     *time.Time                 `json:"clock_out,omitempty"`
	Manual       bool                       `json:"manual"`
	Notes        *string                    `json:"notes,omitempty"`
	Category     *domain.AttendanceCategory `json:"category,omitempty"`
	ElapsedHours float64                    `json:"elapsed_hours"`
	CreatedAt    time.Time                  `json:"created_at"`
}

func newShiftView(shift domain.Shift, now time.Time) ShiftView {
	return ShiftView{
		ID:           shift.ID,
		WorkerID:     shift.WorkerID,
		ClockIn:      shift.ClockIn,
		ClockOut:     shift.ClockOut,
		Manual:       shift.Manual,
		Notes:        shift.Notes,
		Category:     shift.Category,
		ElapsedHours: shift.Elapsed(now),
		CreatedAt:    shift.CreatedAt,
	}
}

// SigninRequest defines the payload for the sign-in endpoint.
type SigninRequest struct {
	Email string `json:"email" binding:"required"`
	PIN   string `json:"pin" binding:"required"`
}

// SigninResponse is returned for a successful sign-in.
type SigninResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int           `json:"expires_in"`
	Worker      WorkerSummary `json:"worker"`
}

// CreateWorkerRequest defines the account creation payload.
type CreateWorkerRequest struct {
	FirstName  string  `json:"first_name" binding:"required"`
	LastName   string  `json:"last_name" binding:"required"`
	KoreanName *string `json:"korean_name"`
	Email      string  `json:"email" binding:"required"`
	SessionDay string  `json:"session_day" binding:"required"`
	Classroom  *string `json:"classroom"`
}

// CreateWorkerResponse carries the new account and its one-time plaintext PIN.
type CreateWorkerResponse struct {
	Worker WorkerSummary `json:"worker"`
	PIN    string        `json:"pin"`
}

// ResetPINResponse carries the replacement plaintext PIN, shown exactly once.
type ResetPINResponse struct {
	PIN string `json:"pin"`
}

// ClockRequest identifies the worker clocking in or out.
type ClockRequest struct {
	WorkerID int64 `json:"worker_id" binding:"required"`
}

// ManualShiftRequest defines an administrator-entered shift record.
type ManualShiftRequest struct {
	WorkerID int64      `json:"worker_id" binding:"required"`
	ClockIn  time.Time  `json:"clock_in" binding:"required"`
	ClockOut *time.Time `json:"clock_out"`
	Notes    *string    `json:"notes"`
}

// UpdateShiftRequest is a partial shift update. Raw messages keep "field
// absent" distinct from "field explicitly null": absent fields stay
// untouched, explicit nulls clear their columns.
type UpdateShiftRequest struct {
	ClockIn      *time.Time      `json:"clock_in"`
	ClockOut     json.RawMessage `json:"clock_out"`
	Notes        json.RawMessage `json:"notes"`
	Category     json.RawMessage `json:"category"`
	ElapsedHours json.RawMessage `json:"elapsed_hours"`
}

func (r UpdateShiftRequest) toPatch() (domain.ShiftPatch, error) {
	var patch domain.ShiftPatch

	if r.ClockIn != nil {
		patch.ClockIn = domain.Some(r.ClockIn.UTC())
	}

	clockOut, err := rawOptional[time.Time](r.ClockOut, "clock_out")
	if err != nil {
		return domain.ShiftPatch{}, err
	}
	patch.ClockOut = clockOut

	notes, err := rawOptional[string](r.Notes, "notes")
	if err != nil {
		return domain.ShiftPatch{}, err
	}
	patch.Notes = notes

	category, err := rawOptional[domain.AttendanceCategory](r.Category, "category")
	if err != nil {
		return domain.ShiftPatch{}, err
	}
	patch.Category = category

	elapsed, err := rawOptional[float64](r.ElapsedHours, "elapsed_hours")
	if err != nil {
		return domain.ShiftPatch{}, err
	}
	patch.ElapsedHours = elapsed

	return patch, nil
}

// rawOptional decodes a raw field into the tri-state Optional: unset when
// the field was absent, a nil pointer for explicit null, a value otherwise.
func rawOptional[T any](raw json.RawMessage, field string) (domain.Optional[*T], error) {
	if len(raw) == 0 {
		return domain.Optional[*T]{}, nil
	}
	if string(raw) == "null" {
		return domain.Some[*T](nil), nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return domain.Optional[*T]{}, fmt.Errorf("invalid %s: %w", field, err)
	}
	return domain.Some(&value), nil
}

// ActiveShiftResponse wraps the open shift query; Shift is null when idle.
type ActiveShiftResponse struct {
	Shift *ShiftView `json:"shift"`
}

// AttendanceResponse reports the daily presence answer.
type AttendanceResponse struct {
	WorkerID int64  `json:"worker_id"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

// HoursResponse reports accumulated fractional hours.
type HoursResponse struct {
	WorkerID   int64   `json:"worker_id"`
	TotalHours float64 `json:"total_hours"`
}

// CalendarDatesPayload carries the selected session dates as YYYY-MM-DD.
type CalendarDatesPayload struct {
	Dates []string `json:"dates"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, NewErrorResponse(c, fmt.Sprintf("%s must be a positive integer", param)))
		return 0, false
	}
	return id, true
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}

func parseSessionDay(raw string) (domain.SessionDay, bool) {
	day := domain.SessionDay(strings.ToLower(strings.TrimSpace(raw)))
	return day, domain.ValidSessionDay(day)
}
