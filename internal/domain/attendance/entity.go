package attendance

import (
	"time"
)

// AttendanceStatus is the closed set of day-level statuses.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusLate    AttendanceStatus = "late"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLeave   AttendanceStatus = "leave"
	StatusHalfDay AttendanceStatus = "half_day"
)

// IsValid reports whether s is one of the known statuses.
func (s AttendanceStatus) IsValid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusLeave, StatusHalfDay:
		return true
	}
	return false
}

// BreakKind is the closed set of break sessions a day may contain.
type BreakKind string

const (
	BreakFirst  BreakKind = "break1"
	BreakSecond BreakKind = "break2"
	BreakLunch  BreakKind = "lunch"
)

func (k BreakKind) IsValid() bool {
	switch k {
	case BreakFirst, BreakSecond, BreakLunch:
		return true
	}
	return false
}

// BreakSession is one break interval inside a day. End is nil while the break
// is open.
type BreakSession struct {
	Kind  BreakKind
	Start time.Time
	End   *time.Time
}

// RegularizationEntry is one HR override applied to a closed day.
type RegularizationEntry struct {
	Actor     string
	Reason    string
	OldStatus AttendanceStatus
	NewStatus AttendanceStatus
	OldHours  float64
	NewHours  float64
	At        time.Time
}

// AttendanceDay is the per-employee, per-day punch fact. A day is open from
// punch-in until punch-out; once closed it only changes through Regularize.
type AttendanceDay struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Status     AttendanceStatus
	PunchIn    *time.Time
	PunchOut   *time.Time

	// TotalHours is worked time minus breaks, rounded to two decimals.
	TotalHours float64

	Breaks []BreakSession
	Audit  []RegularizationEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the day is still accepting transitions.
func (d AttendanceDay) Open() bool {
	return d.PunchIn != nil && d.PunchOut == nil
}

// OpenBreak returns the currently open break session, if any.
func (d AttendanceDay) OpenBreak() *BreakSession {
	for i := range d.Breaks {
		if d.Breaks[i].End == nil {
			return &d.Breaks[i]
		}
	}
	return nil
}

// BreakDuration sums the closed break intervals.
func (d AttendanceDay) BreakDuration() time.Duration {
	var total time.Duration
	for _, b := range d.Breaks {
		if b.End != nil {
			total += b.End.Sub(b.Start)
		}
	}
	return total
}

// LatePolicy decides whether a punch-in timestamp counts as late. The ledger
// takes it as an injected function so the cutoff stays a policy concern.
type LatePolicy func(punchIn time.Time) bool

// CutoffLatePolicy builds a LatePolicy from a "15:04" wall-clock cutoff.
// A malformed cutoff yields a policy that never marks late.
func CutoffLatePolicy(cutoff string) LatePolicy {
	parsed, err := time.Parse("15:04", cutoff)
	if err != nil {
		return func(time.Time) bool { return false }
	}
	return func(punchIn time.Time) bool {
		limit := time.Date(punchIn.Year(), punchIn.Month(), punchIn.Day(),
			parsed.Hour(), parsed.Minute(), 0, 0, punchIn.Location())
		return punchIn.After(limit)
	}
}
