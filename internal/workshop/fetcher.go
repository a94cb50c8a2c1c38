package workshop

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mural/internal/logging"
)

// FetchRequest describes one union fetch across all included tags.
type FetchRequest struct {
	QueryType     int
	Days          int
	IncludeTags   []string // display-form tags, one server query each
	ExcludedTags  []string // always safe server-side, AND/NOT semantics
	PageSize      int
	MaxPages      int // hard per-tag cap against runaway cursors
	MinCandidates int // early-stop threshold on the filtered accumulator
}

// FetchResult carries the filtered candidate set and a per-page trace. Seen
// counts every distinct item the walk touched before filtering.
type FetchResult struct {
	IDs     []uint64
	Details map[uint64]Item
	Trace   []string
	Seen    int
}

// FetchUnion issues one paginated query per included tag (or a single tag-less
// query when nothing is included), unions the results into a deduplicated
// accumulator, and applies accept locally after every page. Fetching stops as
// soon as the accepted count reaches MinCandidates.
//
// The threshold is evaluated against the union accumulated across all tags
// queried so far. That is a deliberate heuristic: the per-tag loop is a union,
// not a multi-tag intersection, so adding dimensions does not shrink remote
// cost proportionally and a restrictive filter may walk every tag to its page
// cap before giving up.
func (c *Client) FetchUnion(ctx context.Context, req FetchRequest, accept func(Item) bool) (FetchResult, error) {
	if accept == nil {
		accept = func(Item) bool { return true }
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 40
	}
	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = 3
	}

	queryTags := req.IncludeTags
	if len(queryTags) == 0 {
		queryTags = []string{""}
	}

	var (
		order   []uint64
		details = make(map[uint64]Item)
		trace   []string
	)

	filtered := func() []uint64 {
		out := make([]uint64, 0, len(order))
		for _, id := range order {
			if accept(details[id]) {
				out = append(out, id)
			}
		}
		return out
	}

	for _, tag := range queryTags {
		cursor := "*"
		for page := 1; page <= maxPages; page++ {
			items, nextCursor, err := c.QueryPage(ctx, PageQuery{
				QueryType:    req.QueryType,
				Days:         req.Days,
				PageSize:     pageSize,
				RequiredTag:  tag,
				ExcludedTags: req.ExcludedTags,
				Cursor:       cursor,
			})
			if err != nil {
				if ctx.Err() != nil {
					return FetchResult{}, ctx.Err()
				}
				// Retries are exhausted inside QueryPage; move on to the
				// next tag rather than aborting the invocation.
				trace = append(trace, pageTrace(tag, page, 0)+" error")
				logging.WarnWithContext(c.logger, "tag query failed", err,
					logging.String(logging.FieldEventType, "workshop_query_failed"),
					logging.String("tag", displayTag(tag)),
					logging.Int("page", page),
					logging.String(logging.FieldErrorHint, "verify steam.api_key and network access"),
					logging.String(logging.FieldImpact, "candidates from this tag are unavailable this run"),
				)
				break
			}

			trace = append(trace, pageTrace(tag, page, len(items)))
			if len(items) == 0 {
				break
			}

			for _, item := range items {
				if _, seen := details[item.ID]; seen {
					continue
				}
				details[item.ID] = item
				order = append(order, item.ID)
			}

			if req.MinCandidates > 0 {
				if current := filtered(); len(current) >= req.MinCandidates {
					trace = append(trace, fmt.Sprintf("early-stop: reached min_candidates=%d", req.MinCandidates))
					return buildResult(current, details, trace), nil
				}
			}

			cursor = nextCursor
			if cursor == "" || len(items) < pageSize {
				break
			}
		}
	}

	return buildResult(filtered(), details, trace), nil
}

func buildResult(ids []uint64, details map[uint64]Item, trace []string) FetchResult {
	kept := make(map[uint64]Item, len(ids))
	for _, id := range ids {
		kept[id] = details[id]
	}
	return FetchResult{IDs: ids, Details: kept, Trace: trace, Seen: len(details)}
}

func pageTrace(tag string, page, count int) string {
	return fmt.Sprintf("tag=%s p%d items=%d", displayTag(tag), page, count)
}

func displayTag(tag string) string {
	if strings.TrimSpace(tag) == "" {
		return "<none>"
	}
	return tag
}

// LogTrace writes the per-page trace at debug level.
func LogTrace(logger *slog.Logger, trace []string) {
	if logger == nil {
		return
	}
	for _, line := range trace {
		logger.Debug("fetch trace", logging.String("page", line))
	}
}
