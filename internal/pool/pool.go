// Package pool assembles the candidate pool for a rotation walk: fresh items
// first, with a fallback to the full filtered list once everything has been
// seen, so rotation keeps working instead of starving.
package pool

// SeenSet unions the rotation history with the activation-log ids.
func SeenSet(history, logged []uint64) map[uint64]struct{} {
	seen := make(map[uint64]struct{}, len(history)+len(logged))
	for _, id := range history {
		seen[id] = struct{}{}
	}
	for _, id := range logged {
		seen[id] = struct{}{}
	}
	return seen
}

// Assemble picks the pool from the filtered candidates: unseen ids in their
// original order when any exist, otherwise the full filtered list. Each id
// appears at most once either way.
func Assemble(filtered []uint64, seen map[uint64]struct{}) []uint64 {
	dedup := func(ids []uint64, skip map[uint64]struct{}) []uint64 {
		out := make([]uint64, 0, len(ids))
		taken := make(map[uint64]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := taken[id]; dup {
				continue
			}
			if skip != nil {
				if _, s := skip[id]; s {
					continue
				}
			}
			taken[id] = struct{}{}
			out = append(out, id)
		}
		return out
	}

	fresh := dedup(filtered, seen)
	if len(fresh) > 0 {
		return fresh
	}
	return dedup(filtered, nil)
}
