// Package actions implements the hook behaviors on top of the signal store.
// Every action reports an Outcome instead of failing the hook process.
package actions

// Status classifies how a hook action ended.
type Status string

const (
	// StatusCaptured means a signal was persisted.
	StatusCaptured Status = "captured"
	// StatusSkipped means there was intentionally nothing to do.
	StatusSkipped Status = "skipped"
	// StatusFailed means an unexpected error prevented capture.
	StatusFailed Status = "failed"
)

// Outcome is the result of one hook action.
//
// A Captured outcome may still carry Err for a secondary step that failed
// after the primary signal was written (low-rating note, agent map, relay).
type Outcome struct {
	Status   Status   `json:"status"`
	Reason   string   `json:"reason,omitempty"`
	Path     string   `json:"path,omitempty"`
	Feedback []string `json:"feedback,omitempty"`
	Err      error    `json:"-"`
}

func skipped(reason string, feedback ...string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason, Feedback: feedback}
}

func failed(reason string, err error) Outcome {
	return Outcome{Status: StatusFailed, Reason: reason, Err: err}
}
