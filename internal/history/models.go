package history

import "time"

// Status is the lifecycle state of a transcode row.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Entry is one recorded transcode attempt.
type Entry struct {
	ID             int64
	RunID          string
	SourcePath     string
	OutputPath     string
	Command        string
	VideoCodec     string
	HardwareVendor string
	Status         Status
	Failure        string
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// Duration is the elapsed time of a finished entry.
func (e Entry) Duration() time.Duration {
	if e.FinishedAt == nil || e.StartedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}
