package ipc

// RunNowRequest triggers an immediate rotation invocation.
type RunNowRequest struct{}

// RunNowResponse indicates whether the run was scheduled.
type RunNowResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents scheduler status information.
type StatusResponse struct {
	Running     bool   `json:"running"`
	PID         int    `json:"pid"`
	LastStatus  string `json:"last_status"`
	LastError   string `json:"last_error"`
	LastRunAt   string `json:"last_run_at"`
	NextRunAt   string `json:"next_run_at"`
	LockPath    string `json:"lock_path"`
	StateFile   string `json:"state_file"`
	JournalPath string `json:"journal_path"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
