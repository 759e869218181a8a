package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrAlreadyPunchedIn = errors.New("an attendance day is already open for this employee")
	ErrNotPunchedIn     = errors.New("no open attendance day for this employee")

	// Break errors
	ErrInvalidBreakTransition = errors.New("break transition not valid in the current state")

	// Policy errors
	ErrMinimumHoursNotMet = errors.New("worked hours are below the daily minimum")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance day not found")
	ErrDayStillOpen       = errors.New("attendance day is still open")
)
