package domain

import "time"

// SessionDay enumerates the enrollment day categories a TA can belong to.
type SessionDay string

const (
	SessionDayFriday   SessionDay = "friday"
	SessionDaySaturday SessionDay = "saturday"
	SessionDaySunday   SessionDay = "sunday"
)

// ValidSessionDay reports whether the value is one of the enumerated days.
func ValidSessionDay(d SessionDay) bool {
	switch d {
	case SessionDayFriday, SessionDaySaturday, SessionDaySunday:
		return true
	}
	return false
}

// Worker mirrors the persisted representation in the workers table.
// The PIN is stored only as a bcrypt hash; the plaintext exists once, at
// creation or reset, and is never recoverable afterwards.
type Worker struct {
	ID         int64
	FirstName  string
	LastName   string
	KoreanName *string
	Email      string
	PINHash    string
	SessionDay SessionDay
	Active     bool
	Classroom  *string
	CreatedAt  time.Time
}

// Sanitized returns a copy with the credential hash blanked, safe to hand
// to callers outside the credential service.
func (w Worker) Sanitized() Worker {
	w.PINHash = ""
	return w
}
