package workshop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"mural/internal/logging"
)

const (
	defaultBaseURL    = "https://api.steampowered.com"
	defaultBrowseURL  = "https://steamcommunity.com/workshop/browse/"
	queryFilesPath    = "/IPublishedFileService/QueryFiles/v1/"
	fileDetailsPath   = "/ISteamRemoteStorage/GetPublishedFileDetails/v1/"
	detailsBatchSize  = 100
	defaultMaxTries   = 6
	defaultRatePerMin = 60
)

// HTTPDoer describes the HTTP client used by the workshop Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOptions configures a Client. Zero values take defaults.
type ClientOptions struct {
	BaseURL        string
	BrowseURL      string
	HTTPClient     HTTPDoer
	MaxTries       int
	RequestsPerMin int
	Logger         *slog.Logger
}

// Client issues Steam Web API requests with pacing and bounded retries.
type Client struct {
	baseURL   string
	browseURL string
	apiKey    string
	http      HTTPDoer
	limiter   *rate.Limiter
	maxTries  int
	logger    *slog.Logger
}

// NewClient builds a workshop client. The API key may be empty, in which case
// QueryPage fails fast; keyless callers gate on HasKey and use the community
// browse endpoints instead.
func NewClient(apiKey string, opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	browseURL := strings.TrimSpace(opts.BrowseURL)
	if browseURL == "" {
		browseURL = defaultBrowseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	maxTries := opts.MaxTries
	if maxTries <= 0 {
		maxTries = defaultMaxTries
	}
	perMin := opts.RequestsPerMin
	if perMin <= 0 {
		perMin = defaultRatePerMin
	}
	return &Client{
		baseURL:   baseURL,
		browseURL: browseURL,
		apiKey:    strings.TrimSpace(apiKey),
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Limit(float64(perMin)/60.0), 1),
		maxTries:  maxTries,
		logger:    logging.NewComponentLogger(opts.Logger, "workshop"),
	}
}

// HasKey reports whether the client holds a Web API key.
func (c *Client) HasKey() bool { return c.apiKey != "" }

// PageQuery describes a single tag-constrained catalog page request.
type PageQuery struct {
	QueryType    int
	Days         int
	PageSize     int
	RequiredTag  string // singleton or empty; see package doc
	ExcludedTags []string
	Cursor       string // "*" starts a walk
}

type queryFilesPayload struct {
	QueryType          int      `json:"query_type"`
	AppID              int      `json:"appid"`
	NumPerPage         int      `json:"numperpage"`
	ReturnKVTags       bool     `json:"return_kv_tags"`
	ReturnTags         bool     `json:"return_tags"`
	ReturnChildren     bool     `json:"return_children"`
	ReturnPreviews     bool     `json:"return_previews"`
	MatchAllTags       bool     `json:"match_all_tags"`
	FileType           int      `json:"filetype"`
	MatureContent      bool     `json:"mature_content"`
	IncludeMature      bool     `json:"include_mature"`
	CacheMaxAgeSeconds int      `json:"cache_max_age_seconds"`
	Days               int      `json:"days,omitempty"`
	IncludeRecentVotes *bool    `json:"include_recent_votes_only,omitempty"`
	RequiredTags       []string `json:"requiredtags,omitempty"`
	ExcludedTags       []string `json:"excludedtags,omitempty"`
	Cursor             string   `json:"cursor,omitempty"`
}

type queryFilesResponse struct {
	Response struct {
		Items      []rawItem `json:"publishedfiledetails"`
		NextCursor string    `json:"next_cursor"`
	} `json:"response"`
}

// QueryPage fetches one catalog page. Transport failures exhaust the retry
// policy and come back as an error; the fetcher treats that as an empty page.
func (c *Client) QueryPage(ctx context.Context, q PageQuery) ([]Item, string, error) {
	if !c.HasKey() {
		return nil, "", fmt.Errorf("workshop query: no api key configured")
	}

	payload := queryFilesPayload{
		QueryType:          q.QueryType,
		AppID:              AppID,
		NumPerPage:         q.PageSize,
		ReturnKVTags:       true,
		ReturnTags:         true,
		MatchAllTags:       true,
		MatureContent:      true,
		IncludeMature:      true,
		CacheMaxAgeSeconds: 60,
		ExcludedTags:       q.ExcludedTags,
		Cursor:             q.Cursor,
	}
	if q.QueryType == QueryTrend && q.Days > 0 {
		payload.Days = q.Days
		recentOnly := false
		payload.IncludeRecentVotes = &recentOnly
	}
	if tag := strings.TrimSpace(q.RequiredTag); tag != "" {
		payload.RequiredTags = []string{tag}
	}

	inputJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("encode query payload: %w", err)
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("input_json", string(inputJSON))
	requestURL := c.baseURL + queryFilesPath + "?" + params.Encode()

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, "", err
	}

	var decoded queryFilesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, "", fmt.Errorf("decode query response: %w", err)
	}

	items := make([]Item, 0, len(decoded.Response.Items))
	for _, raw := range decoded.Response.Items {
		item, ok := raw.toItem()
		if !ok {
			c.logger.Debug("skipping malformed catalog item", logging.String("publishedfileid", raw.PublishedFileID))
			continue
		}
		items = append(items, item)
	}
	return items, decoded.Response.NextCursor, nil
}

type fileDetailsResponse struct {
	Response struct {
		Items []rawItem `json:"publishedfiledetails"`
	} `json:"response"`
}

// Details backfills full records for the given ids in batches. Ids the remote
// service cannot resolve are simply absent from the result.
func (c *Client) Details(ctx context.Context, ids []uint64) (map[uint64]Item, error) {
	out := make(map[uint64]Item, len(ids))
	for start := 0; start < len(ids); start += detailsBatchSize {
		end := min(start+detailsBatchSize, len(ids))
		chunk := ids[start:end]

		form := url.Values{}
		form.Set("itemcount", strconv.Itoa(len(chunk)))
		for i, id := range chunk {
			form.Set(fmt.Sprintf("publishedfileids[%d]", i), strconv.FormatUint(id, 10))
		}

		body, err := c.postForm(ctx, c.baseURL+fileDetailsPath, form)
		if err != nil {
			// Partial detail coverage beats aborting the invocation.
			logging.WarnWithContext(c.logger, "detail batch failed", err,
				logging.String(logging.FieldEventType, "workshop_details_failed"),
				logging.Int("batch_start", start),
				logging.String(logging.FieldErrorHint, "check network connectivity and proxy settings"),
				logging.String(logging.FieldImpact, "some candidates will miss metadata"),
			)
			continue
		}

		var decoded fileDetailsResponse
		if err := json.Unmarshal(body, &decoded); err != nil {
			continue
		}
		for _, raw := range decoded.Response.Items {
			if item, ok := raw.toItem(); ok {
				out[item.ID] = item
			}
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	return c.roundTrip(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	})
}

func (c *Client) postForm(ctx context.Context, requestURL string, form url.Values) ([]byte, error) {
	encoded := form.Encode()
	return c.roundTrip(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

// roundTrip runs one logical request under the rate limiter and the retry
// policy. 5xx and 429 responses retry; other HTTP errors are permanent.
func (c *Client) roundTrip(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	operation := func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		req, err := build()
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("User-Agent", "mural/1.0")
		if req.Header.Get("Accept") == "" {
			req.Header.Set("Accept", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("workshop request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, fmt.Errorf("workshop request: status %d", resp.StatusCode)
		default:
			return nil, backoff.Permanent(fmt.Errorf("workshop request: status %d", resp.StatusCode))
		}
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.maxTries)),
	)
}
