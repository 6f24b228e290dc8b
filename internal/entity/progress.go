package entity

const (
	ProgressTypeStart    = "start"
	ProgressTypeProgress = "progress"
	ProgressTypeComplete = "complete"
	ProgressTypeError    = "error"
)

// ActivationProgress is the session-keyed snapshot of one bulk activation.
// It is a cache, not a record of truth: the reporter expires it after a
// fixed TTL.
type ActivationProgress struct {
	SessionID         string `json:"session_id"`
	Type              string `json:"type"` // start, progress, complete, error
	Total             int    `json:"total"`
	Activated         int    `json:"activated"`
	Skipped           int    `json:"skipped"`
	Failed            int    `json:"failed"`
	EmailsSent        int    `json:"emails_sent"`
	EmailsFailed      int    `json:"emails_failed"`
	EmailsPending     int    `json:"emails_pending"`
	Percentage        int    `json:"percentage"`
	Msg               string `json:"msg,omitempty"`
	EmailLimitReached bool   `json:"email_limit_reached"`
}
