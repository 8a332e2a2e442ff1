package domain

import "time"

// AttendanceCategory is the post-hoc label an administrator can place on a
// shift record.
type AttendanceCategory string

const (
	CategoryOnTime    AttendanceCategory = "on_time"
	CategoryLate      AttendanceCategory = "late"
	CategoryLeftEarly AttendanceCategory = "left_early"
)

// ValidAttendanceCategory reports whether the value is a known label.
func ValidAttendanceCategory(c AttendanceCategory) bool {
	switch c {
	case CategoryOnTime, CategoryLate, CategoryLeftEarly:
		return true
	}
	return false
}

// Shift is one continuous span of presence for exactly one worker. A nil
// ClockOut means the shift is open. Manual marks administrator-entered
// records as opposed to device clock-ins.
type Shift struct {
	ID           int64
	WorkerID     int64
	ClockIn      time.Time
	ClockOut     *time.Time
	Manual       bool
	Notes        *string
	Category     *AttendanceCategory
	ElapsedHours *float64 // administrator override, normally nil
	CreatedAt    time.Time
}

// Open reports whether the shift has not been clocked out yet.
func (s Shift) Open() bool {
	return s.ClockOut == nil
}

// Elapsed returns the worked span in fractional hours, computed on read.
// An open shift is measured against now. A non-positive span counts as
// zero, never negative. An explicit administrator override wins.
func (s Shift) Elapsed(now time.Time) float64 {
	if s.ElapsedHours != nil {
		return *s.ElapsedHours
	}
	end := now
	if s.ClockOut != nil {
		end = *s.ClockOut
	}
	d := end.Sub(s.ClockIn)
	if d <= 0 {
		return 0
	}
	return d.Hours()
}

// Optional wraps a value so that "field not sent" stays distinct from
// "field explicitly set" (including explicitly set to nil) in partial
// update payloads.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a present Optional carrying v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// ShiftPatch describes a partial update to an existing shift. Each field
// is applied only when its Optional is set; pointer values may be
// explicitly nil to clear the column.
type ShiftPatch struct {
	ClockIn      Optional[time.Time]
	ClockOut     Optional[*time.Time]
	Notes        Optional[*string]
	Category     Optional[*AttendanceCategory]
	ElapsedHours Optional[*float64]
}

// Empty reports whether the patch carries no changes.
func (p ShiftPatch) Empty() bool {
	return !p.ClockIn.Set && !p.ClockOut.Set && !p.Notes.Set && !p.Category.Set && !p.ElapsedHours.Set
}
