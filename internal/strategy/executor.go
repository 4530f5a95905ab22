package strategy

import (
	"context"
)

const (
	JOB_EXIT_CODE_SUCCESS         = 200
	JOB_EXIT_CODE_FAILED          = 500
	JOB_EXIT_CODE_SKIPPED         = 204
	JOB_EXIT_CODE_PARTIAL_SUCCESS = 206
)

type JobType string

const (
	JobTypePriceAlert JobType = "price_alert"
)

type JobResult struct {
	ExitCode int32  `json:"exit_code"`
	Output   string `json:"output"`
}

// Status maps the exit code to the label used in metrics.
func (r JobResult) Status() string {
	switch r.ExitCode {
	case JOB_EXIT_CODE_SUCCESS:
		return "success"
	case JOB_EXIT_CODE_SKIPPED:
		return "no_data"
	case JOB_EXIT_CODE_PARTIAL_SUCCESS:
		return "partial"
	default:
		return "error"
	}
}

// JobExecutionStrategy defines the interface for background jobs.
type JobExecutionStrategy interface {
	Execute(ctx context.Context) (JobResult, error)
	GetType() JobType
}

// Notifier delivers a plain text message to a user. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, userID string, text string) error
}
