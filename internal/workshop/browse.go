package workshop

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"mural/internal/logging"
)

// The browse page carries ids both as data attributes on item tiles and as
// plain filedetails links; newer and older page layouts differ in which one
// survives, so both are harvested.
var (
	browseTilePattern = regexp.MustCompile(`data-publishedfileid="(\d+)"`)
	browseLinkPattern = regexp.MustCompile(`/filedetails/\?id=(\d+)`)
)

// BrowseRequest describes a keyless union fetch over the public community
// browse pages. It mirrors FetchRequest with the Web API query type replaced
// by the browse page's sort name.
type BrowseRequest struct {
	Sort          string // browsesort value, see MapBrowseSort
	Days          int
	IncludeTags   []string
	ExcludedTags  []string
	PageSize      int
	MaxPages      int
	MinCandidates int
}

type browseQuery struct {
	sort         string
	days         int
	pageSize     int
	page         int
	requiredTag  string
	excludedTags []string
}

// browsePage scrapes one community browse page and returns the workshop ids
// it lists, in page order, deduplicated.
func (c *Client) browsePage(ctx context.Context, q browseQuery) ([]uint64, error) {
	params := url.Values{}
	params.Set("appid", strconv.Itoa(AppID))
	params.Set("browsesort", q.sort)
	params.Set("actualsort", q.sort)
	params.Set("days", strconv.Itoa(q.days))
	params.Set("section", "readytouseitems")
	params.Set("l", "english")
	params.Set("numperpage", strconv.Itoa(q.pageSize))
	params.Set("p", strconv.Itoa(q.page))
	if q.requiredTag != "" {
		params.Add("requiredtags[]", q.requiredTag)
	}
	for _, tag := range q.excludedTags {
		params.Add("excludedtags[]", tag)
	}
	requestURL := c.browseURL + "?" + params.Encode()
	referer := fmt.Sprintf("%s?appid=%d&browsesort=%s", c.browseURL, AppID, q.sort)

	body, err := c.roundTrip(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/html")
		req.Header.Set("Referer", referer)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	return extractBrowseIDs(string(body)), nil
}

func extractBrowseIDs(html string) []uint64 {
	var (
		out  []uint64
		seen = make(map[uint64]struct{})
	)
	collect := func(pattern *regexp.Regexp) {
		for _, match := range pattern.FindAllStringSubmatch(html, -1) {
			id, err := strconv.ParseUint(match[1], 10, 64)
			if err != nil || id == 0 {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	collect(browseTilePattern)
	collect(browseLinkPattern)
	return out
}

// FetchBrowseUnion is the keyless counterpart of FetchUnion: it unions ids
// scraped from one browse walk per included tag, backfills metadata through
// Details, and applies accept locally. The early stop during the walk is
// coarse (raw ids, not yet filtered) because tag metadata only arrives with
// the detail backfill.
func (c *Client) FetchBrowseUnion(ctx context.Context, req BrowseRequest, accept func(Item) bool) (FetchResult, error) {
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
		order []uint64
		seen  = make(map[uint64]struct{})
		trace []string
	)

walk:
	for _, tag := range queryTags {
		for page := 1; page <= maxPages; page++ {
			ids, err := c.browsePage(ctx, browseQuery{
				sort:         req.Sort,
				days:         req.Days,
				pageSize:     pageSize,
				page:         page,
				requiredTag:  tag,
				excludedTags: req.ExcludedTags,
			})
			if err != nil {
				if ctx.Err() != nil {
					return FetchResult{}, ctx.Err()
				}
				trace = append(trace, browseTrace(tag, page, 0)+" error")
				logging.WarnWithContext(c.logger, "browse page failed", err,
					logging.String(logging.FieldEventType, "workshop_browse_failed"),
					logging.String("tag", displayTag(tag)),
					logging.Int("page", page),
					logging.String(logging.FieldErrorHint, "check network access to steamcommunity.com"),
					logging.String(logging.FieldImpact, "candidates from this tag are unavailable this run"),
				)
				break
			}

			trace = append(trace, browseTrace(tag, page, len(ids)))
			if len(ids) == 0 {
				break
			}
			for _, id := range ids {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				order = append(order, id)
			}
			if req.MinCandidates > 0 && len(order) >= req.MinCandidates {
				trace = append(trace, fmt.Sprintf("early-stop: %d raw ids reach min_candidates=%d", len(order), req.MinCandidates))
				break walk
			}
			if len(ids) < pageSize {
				break
			}
		}
	}

	if len(order) == 0 {
		return FetchResult{Details: map[uint64]Item{}, Trace: trace}, nil
	}

	details, err := c.Details(ctx, order)
	if err != nil {
		return FetchResult{}, fmt.Errorf("backfill browse details: %w", err)
	}

	kept := make([]uint64, 0, len(order))
	for _, id := range order {
		item, ok := details[id]
		if !ok {
			continue
		}
		if accept(item) {
			kept = append(kept, id)
		}
	}
	keptDetails := make(map[uint64]Item, len(kept))
	for _, id := range kept {
		keptDetails[id] = details[id]
	}
	return FetchResult{IDs: kept, Details: keptDetails, Trace: trace, Seen: len(order)}, nil
}

func browseTrace(tag string, page, count int) string {
	return fmt.Sprintf("browse tag=%s p%d items=%d", displayTag(tag), page, count)
}
