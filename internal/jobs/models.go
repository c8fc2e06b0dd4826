package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a processing job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusValidating Status = "validating"
	StatusBuilding   Status = "building"
	StatusExecuting  Status = "executing"
	StatusFinalizing Status = "finalizing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// CancelRequestReason is the error message recorded when a user stops a job.
const CancelRequestReason = "Cancel requested by user"

var allStatuses = []Status{
	StatusPending,
	StatusValidating,
	StatusBuilding,
	StatusExecuting,
	StatusFinalizing,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusValidating: {},
	StatusBuilding:   {},
	StatusExecuting:  {},
	StatusFinalizing: {},
}

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// Job represents one processing run persisted in SQLite. The orchestrator is
// the only writer while the job is live; everyone else reads snapshots.
type Job struct {
	ID              int64
	SourcePath      string
	OutputPath      string
	Title           string
	Status          Status
	RemoveJSON      string
	ProfileJSON     string
	SubtitleLang    string
	WantSubtitles   bool
	SubtitlePath    string
	SubtitleWarning string
	CancelRequested bool
	ErrorMessage    string
	ExitCode        int
	StderrTail      string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing reports whether the status reflects an in-flight operation.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// IsTerminal reports whether a job in this status can never transition again.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// CanTransition reports whether moving from s to next is a legal state change.
// Forward pipeline moves only; failed and cancelled are reachable from any
// non-terminal state; terminal states never transition.
func (s Status) CanTransition(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case StatusFailed, StatusCancelled:
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusValidating
	case StatusValidating:
		return next == StatusBuilding
	case StatusBuilding:
		return next == StatusExecuting
	case StatusExecuting:
		return next == StatusFinalizing
	case StatusFinalizing:
		return next == StatusCompleted
	default:
		return false
	}
}

// SetProgress updates all three progress fields together.
func (j *Job) SetProgress(stage, message string, percent float64) {
	j.ProgressStage = stage
	j.ProgressMessage = message
	j.ProgressPercent = percent
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressMessage = message
	j.ProgressStage = "Failed"
}

// SetCancelled marks the job as cancelled.
func (j *Job) SetCancelled(reason string) {
	j.Status = StatusCancelled
	if strings.TrimSpace(reason) == "" {
		reason = CancelRequestReason
	}
	j.ErrorMessage = reason
	j.ProgressMessage = reason
	j.ProgressStage = "Cancelled"
}

// StageLabel returns the presentation label for a status.
func (s Status) StageLabel() string {
	switch s {
	case StatusPending:
		return "Queued"
	case StatusValidating:
		return "Validating"
	case StatusBuilding:
		return "Building"
	case StatusExecuting:
		return "Encoding"
	case StatusFinalizing:
		return "Finalizing"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}
