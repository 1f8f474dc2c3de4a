package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a job on a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrScanAlreadyInProgress is returned when a manual trigger overlaps a running scan
	ErrScanAlreadyInProgress = errors.New("risk scan already in progress")
)
