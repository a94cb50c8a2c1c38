package rotation

import (
	"context"
	"log/slog"

	"mural/internal/logging"
)

// Options controls one rotation walk.
type Options struct {
	OnePerRun   bool
	Wraparound  bool // cursor wraps past the end instead of exhausting
	MaxAttempts int
}

// Activator performs the full activation pipeline for one item.
type Activator interface {
	Activate(ctx context.Context, id uint64) error
}

// Outcome reports what a walk did. The caller persists state.
type Outcome struct {
	AppliedIDs []uint64
	FailedIDs  []uint64
	Attempted  int
	Exhausted  bool // cursor past the end with wraparound disabled
}

// Applied reports whether at least one activation succeeded.
func (o Outcome) Applied() bool { return len(o.AppliedIDs) > 0 }

// AttemptList returns the pool indexes a walk would visit: up to
// min(maxAttempts, n) starting at cursor, wrapping modulo n only when wrap is
// set. A nil result with cursor >= n means the rotation is exhausted.
func AttemptList(cursor, n, maxAttempts int, wrap bool) []int {
	if n <= 0 || maxAttempts <= 0 {
		return nil
	}
	if cursor >= n {
		if !wrap {
			return nil
		}
		cursor = 0
	}
	if cursor < 0 {
		cursor = 0
	}
	count := min(maxAttempts, n)
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		idx := cursor + i
		if idx >= n {
			if !wrap {
				break
			}
			idx %= n
		}
		out = append(out, idx)
	}
	return out
}

// Run walks the pool starting at the state cursor, activating items until one
// succeeds (one-per-run) or attempts run out. The state is mutated in place:
// successes and failures are recorded and the cursor advances by the number of
// attempts actually made, modulo n when wraparound is enabled and clamped to n
// otherwise.
func Run(ctx context.Context, pool []uint64, state *State, opts Options, activator Activator, logger *slog.Logger) Outcome {
	n := len(pool)
	outcome := Outcome{}
	if n == 0 {
		return outcome
	}

	cursor := state.Cursor
	if cursor >= n && !opts.Wraparound {
		outcome.Exhausted = true
		return outcome
	}
	if cursor >= n || cursor < 0 {
		cursor = 0
		state.Cursor = 0
	}

	attempts := AttemptList(cursor, n, opts.MaxAttempts, opts.Wraparound)
	for _, idx := range attempts {
		if ctx.Err() != nil {
			break
		}
		id := pool[idx]
		outcome.Attempted++

		if err := activator.Activate(ctx, id); err != nil {
			state.RecordFailure(id)
			outcome.FailedIDs = append(outcome.FailedIDs, id)
			logging.WarnWithContext(logger, "activation failed", err,
				logging.Uint64("workshop_id", id),
				logging.Int("pool_index", idx),
				logging.String(logging.FieldImpact, "moving to the next candidate"),
			)
			continue
		}

		state.RecordSuccess(id)
		outcome.AppliedIDs = append(outcome.AppliedIDs, id)
		if logger != nil {
			logger.Info("wallpaper applied",
				logging.Uint64("workshop_id", id),
				logging.Int("pool_index", idx))
		}
		if opts.OnePerRun {
			break
		}
	}

	next := cursor + outcome.Attempted
	if opts.Wraparound {
		next %= n
	} else if next > n {
		next = n
	}
	state.Cursor = next

	return outcome
}
