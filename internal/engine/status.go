package engine

// Status is the terminal state of one engine invocation.
type Status string

const (
	// StatusApplied means at least one wallpaper was activated.
	StatusApplied Status = "applied"
	// StatusExhausted means the cursor is past the pool end and wraparound
	// is disabled.
	StatusExhausted Status = "exhausted"
	// StatusNoCandidates means fetch and filter produced an empty pool.
	StatusNoCandidates Status = "no_candidates"
	// StatusAllFailed means every attempted activation failed.
	StatusAllFailed Status = "all_failed"
	// StatusWaitingEngine means no Wallpaper Engine executable was found;
	// the daemon retries on its detect interval.
	StatusWaitingEngine Status = "waiting_engine"
	// StatusWaitingWorkshop means no workshop content root was found.
	StatusWaitingWorkshop Status = "waiting_workshop"
)

// Waiting reports whether the status is a missing-prerequisite state the
// daemon should retry sooner for.
func (s Status) Waiting() bool {
	return s == StatusWaitingEngine || s == StatusWaitingWorkshop
}
