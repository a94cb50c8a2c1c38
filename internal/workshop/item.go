package workshop

import (
	"strconv"
	"strings"

	"mural/internal/tags"
)

// AppID is the Steam application id for Wallpaper Engine.
const AppID = 431960

// Item is one denormalized catalog record. It is immutable once parsed; the
// fetcher may carry it across pages within a single invocation but nothing
// persists it.
type Item struct {
	ID        uint64
	Title     string
	CreatorID string
	Tags      []string
	KVTags    map[string]string
}

// ItemURL returns the public details page for a published file id.
func ItemURL(id uint64) string {
	return "https://steamcommunity.com/sharedfiles/filedetails/?id=" + strconv.FormatUint(id, 10)
}

// NormalizedTags returns the item's tag set in comparison form.
func (it Item) NormalizedTags() tags.Set {
	return tags.NewSet(it.Tags...)
}

// ResolutionField returns the structured resolution metadata, if any. Some
// catalog entries expose resolution only here, not as a visible tag.
func (it Item) ResolutionField() string {
	return strings.TrimSpace(it.KVTags["resolution"])
}

type rawTag struct {
	Tag         string `json:"tag"`
	DisplayName string `json:"display_name"`
}

type rawKVTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type rawItem struct {
	PublishedFileID string     `json:"publishedfileid"`
	Title           string     `json:"title"`
	Creator         string     `json:"creator"`
	Tags            []rawTag   `json:"tags"`
	KVTags          []rawKVTag `json:"kv_tags"`
}

// toItem converts a wire record, reporting false when the id is unusable.
// Malformed entries are skipped, never fatal.
func (r rawItem) toItem() (Item, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(r.PublishedFileID), 10, 64)
	if err != nil || id == 0 {
		return Item{}, false
	}
	item := Item{
		ID:        id,
		Title:     r.Title,
		CreatorID: strings.TrimSpace(r.Creator),
		KVTags:    make(map[string]string, len(r.KVTags)),
	}
	for _, t := range r.Tags {
		if tag := strings.TrimSpace(t.Tag); tag != "" {
			item.Tags = append(item.Tags, tag)
		}
	}
	for _, kv := range r.KVTags {
		key := strings.ToLower(strings.TrimSpace(kv.Key))
		if key == "" {
			continue
		}
		// First value wins on duplicate keys.
		if _, exists := item.KVTags[key]; !exists {
			item.KVTags[key] = strings.TrimSpace(kv.Value)
		}
	}
	return item, true
}
