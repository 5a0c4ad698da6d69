package inspect

import "context"

// Progress stages of a directory audit
const (
	StageStarted   = "started"
	StageFile      = "file"
	StageCompleted = "completed"
	StageFailed    = "failed"
)

// ProgressEvent reports how far a directory audit has come. Completed
// counts finished files, which may finish out of listing order.
type ProgressEvent struct {
	RunID     string `json:"run_id"`
	Stage     string `json:"stage"`
	File      string `json:"file,omitempty"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Error     string `json:"error,omitempty"`
}

// ProgressReporter receives directory audit progress. Implementations are
// called from worker goroutines and must not block for long.
type ProgressReporter interface {
	ReportProgress(ctx context.Context, event ProgressEvent)
}

// ProgressFunc adapts a function to ProgressReporter
type ProgressFunc func(ctx context.Context, event ProgressEvent)

// ReportProgress calls f
func (f ProgressFunc) ReportProgress(ctx context.Context, event ProgressEvent) {
	f(ctx, event)
}

func (i *Inspector) report(ctx context.Context, event ProgressEvent) {
	if i.progress != nil {
		i.progress.ReportProgress(ctx, event)
	}
}
