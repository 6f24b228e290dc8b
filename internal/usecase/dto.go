package usecase

type ActivateLeadsInput struct {
	SessionID string   `json:"session_id,omitempty"`
	LeadIDs   []string `json:"lead_ids"`
	// InlineSend drives delivery within the same request (small batches).
	// When false, delivery is left to the background queue drain.
	InlineSend bool `json:"inline_send,omitempty"`
}

type ActivateLeadsOutput struct {
	SessionID         string `json:"session_id"`
	Total             int    `json:"total"`
	Activated         int    `json:"activated"`
	Skipped           int    `json:"skipped"`
	Failed            int    `json:"failed"`
	EmailsQueued      int    `json:"emails_queued"`
	EmailsSent        int    `json:"emails_sent"`
	EmailsFailed      int    `json:"emails_failed"`
	EmailLimitReached bool   `json:"email_limit_reached"`
}

type ResendFailedEmailsInput struct {
	IDs []string `json:"ids"`
}

type ResendFailedEmailsOutput struct {
	Resent int `json:"resent"`
	Failed int `json:"failed"`
}
