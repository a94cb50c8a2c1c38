package workshop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

type fakePage struct {
	items      []map[string]any
	nextCursor string
}

// fakeCatalog serves QueryFiles pages keyed by required tag and cursor.
type fakeCatalog struct {
	pages    map[string][]fakePage // tag -> ordered pages
	failTags map[string]bool
	requests atomic.Int64
}

func catalogItem(id uint64, title string, tagNames ...string) map[string]any {
	tags := make([]map[string]string, 0, len(tagNames))
	for _, t := range tagNames {
		tags = append(tags, map[string]string{"tag": t})
	}
	return map[string]any{
		"publishedfileid": fmt.Sprintf("%d", id),
		"title":           title,
		"creator":         "76561190000000000",
		"tags":            tags,
	}
}

func (f *fakeCatalog) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if !strings.Contains(r.URL.Path, "QueryFiles") {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}

		var payload struct {
			RequiredTags []string `json:"requiredtags"`
			Cursor       string   `json:"cursor"`
		}
		if err := json.Unmarshal([]byte(r.URL.Query().Get("input_json")), &payload); err != nil {
			t.Errorf("decode input_json: %v", err)
		}

		tag := ""
		if len(payload.RequiredTags) > 0 {
			tag = payload.RequiredTags[0]
		}
		if f.failTags[tag] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}

		pages := f.pages[tag]
		var page fakePage
		if payload.Cursor == "*" || payload.Cursor == "" {
			if len(pages) > 0 {
				page = pages[0]
			}
		} else {
			for i, p := range pages[:max(len(pages)-1, 0)] {
				if p.nextCursor == payload.Cursor {
					page = pages[i+1]
					break
				}
			}
		}

		resp := map[string]any{
			"response": map[string]any{
				"publishedfiledetails": page.items,
				"next_cursor":          page.nextCursor,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}
}

func newTestClient(t *testing.T, catalog *fakeCatalog) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(catalog.handler(t))
	t.Cleanup(server.Close)
	client := NewClient("test-key", ClientOptions{
		BaseURL:        server.URL,
		HTTPClient:     server.Client(),
		MaxTries:       1,
		RequestsPerMin: 600000,
	})
	return client, server
}

func TestFetchUnionDeduplicatesAcrossTags(t *testing.T) {
	catalog := &fakeCatalog{pages: map[string][]fakePage{
		"Nature": {{items: []map[string]any{
			catalogItem(1, "Forest", "Nature"),
			catalogItem(2, "Lake", "Nature", "Landscape"),
		}}},
		"Landscape": {{items: []map[string]any{
			catalogItem(2, "Lake", "Nature", "Landscape"),
			catalogItem(3, "Ridge", "Landscape"),
		}}},
	}}
	client, _ := newTestClient(t, catalog)

	result, err := client.FetchUnion(context.Background(), FetchRequest{
		IncludeTags: []string{"Nature", "Landscape"},
		PageSize:    40,
		MaxPages:    3,
	}, nil)
	if err != nil {
		t.Fatalf("FetchUnion: %v", err)
	}

	want := []uint64{1, 2, 3}
	if len(result.IDs) != len(want) {
		t.Fatalf("ids = %v, want %v", result.IDs, want)
	}
	for i, id := range want {
		if result.IDs[i] != id {
			t.Fatalf("ids = %v, want %v", result.IDs, want)
		}
	}
	if result.Seen != 3 {
		t.Fatalf("seen = %d, want 3", result.Seen)
	}
	if result.Details[2].Title != "Lake" {
		t.Fatalf("details[2] = %+v", result.Details[2])
	}
}

func TestFetchUnionEarlyStop(t *testing.T) {
	catalog := &fakeCatalog{pages: map[string][]fakePage{
		"Nature": {{items: []map[string]any{
			catalogItem(1, "Forest", "Nature"),
			catalogItem(2, "Lake", "Nature"),
		}}},
		"Landscape": {{items: []map[string]any{
			catalogItem(3, "Ridge", "Landscape"),
		}}},
	}}
	client, _ := newTestClient(t, catalog)

	result, err := client.FetchUnion(context.Background(), FetchRequest{
		IncludeTags:   []string{"Nature", "Landscape"},
		PageSize:      40,
		MaxPages:      3,
		MinCandidates: 2,
	}, nil)
	if err != nil {
		t.Fatalf("FetchUnion: %v", err)
	}

	if len(result.IDs) != 2 {
		t.Fatalf("ids = %v, want two", result.IDs)
	}
	if got := catalog.requests.Load(); got != 1 {
		t.Fatalf("requests = %d, want 1 (second tag skipped)", got)
	}
	found := false
	for _, line := range result.Trace {
		if strings.Contains(line, "early-stop") {
			found = true
		}
	}
	if !found {
		t.Fatalf("trace missing early-stop marker: %v", result.Trace)
	}
}

func TestFetchUnionWalksCursorPages(t *testing.T) {
	catalog := &fakeCatalog{pages: map[string][]fakePage{
		"Nature": {
			{items: []map[string]any{
				catalogItem(1, "Forest", "Nature"),
				catalogItem(2, "Lake", "Nature"),
			}, nextCursor: "c2"},
			{items: []map[string]any{
				catalogItem(3, "Ridge", "Nature"),
			}},
		},
	}}
	client, _ := newTestClient(t, catalog)

	result, err := client.FetchUnion(context.Background(), FetchRequest{
		IncludeTags: []string{"Nature"},
		PageSize:    2,
		MaxPages:    5,
	}, nil)
	if err != nil {
		t.Fatalf("FetchUnion: %v", err)
	}
	if len(result.IDs) != 3 {
		t.Fatalf("ids = %v, want three across two pages", result.IDs)
	}
	if got := catalog.requests.Load(); got != 2 {
		t.Fatalf("requests = %d, want 2", got)
	}
}

func TestFetchUnionAppliesAcceptLocally(t *testing.T) {
	catalog := &fakeCatalog{pages: map[string][]fakePage{
		"": {{items: []map[string]any{
			catalogItem(1, "Forest", "Nature"),
			catalogItem(2, "Lake", "Nature"),
			catalogItem(3, "Ridge", "Landscape"),
		}}},
	}}
	client, _ := newTestClient(t, catalog)

	result, err := client.FetchUnion(context.Background(), FetchRequest{
		PageSize: 40,
		MaxPages: 1,
	}, func(it Item) bool { return it.ID%2 == 1 })
	if err != nil {
		t.Fatalf("FetchUnion: %v", err)
	}
	if len(result.IDs) != 2 || result.IDs[0] != 1 || result.IDs[1] != 3 {
		t.Fatalf("ids = %v, want [1 3]", result.IDs)
	}
	// Seen counts pre-filter items.
	if result.Seen != 3 {
		t.Fatalf("seen = %d, want 3", result.Seen)
	}
}

func TestFetchUnionContinuesPastFailingTag(t *testing.T) {
	catalog := &fakeCatalog{
		pages: map[string][]fakePage{
			"Landscape": {{items: []map[string]any{
				catalogItem(3, "Ridge", "Landscape"),
			}}},
		},
		failTags: map[string]bool{"Nature": true},
	}
	client, _ := newTestClient(t, catalog)

	result, err := client.FetchUnion(context.Background(), FetchRequest{
		IncludeTags: []string{"Nature", "Landscape"},
		PageSize:    40,
		MaxPages:    3,
	}, nil)
	if err != nil {
		t.Fatalf("FetchUnion: %v", err)
	}
	if len(result.IDs) != 1 || result.IDs[0] != 3 {
		t.Fatalf("ids = %v, want [3] from surviving tag", result.IDs)
	}
}

func TestFetchUnionSkipsMalformedItems(t *testing.T) {
	catalog := &fakeCatalog{pages: map[string][]fakePage{
		"": {{items: []map[string]any{
			{"publishedfileid": "not-a-number", "title": "Broken"},
			catalogItem(7, "Fine", "Nature"),
		}}},
	}}
	client, _ := newTestClient(t, catalog)

	result, err := client.FetchUnion(context.Background(), FetchRequest{
		PageSize: 40,
		MaxPages: 1,
	}, nil)
	if err != nil {
		t.Fatalf("FetchUnion: %v", err)
	}
	if len(result.IDs) != 1 || result.IDs[0] != 7 {
		t.Fatalf("ids = %v, want [7]", result.IDs)
	}
}
