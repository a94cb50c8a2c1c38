package workshop

import "strings"

// Query types understood by IPublishedFileService/QueryFiles.
const (
	QueryRecent     = 1
	QueryTrend      = 3
	QuerySubscribed = 9
	QueryTopRated   = 11
)

// MapSort translates an operator sort method into a (query_type, days) pair.
// "Last Updated" has no Web API equivalent and falls back to Most Recent;
// unknown methods default to the weekly trend board.
func MapSort(method string) (queryType, days int) {
	s := strings.ToLower(strings.TrimSpace(method))
	switch {
	case s == "most recent" || s == "newest" || s == "recent":
		return QueryRecent, 0
	case s == "top rated" || s == "most up votes" || s == "most upvoted":
		return QueryTopRated, 0
	case s == "most subscriptions" || s == "most subscribed" || s == "subscribed":
		return QuerySubscribed, 0
	case s == "last updated" || s == "recently updated" || s == "updated":
		return QueryRecent, 0
	case strings.HasPrefix(s, "most popular"):
		switch {
		case strings.Contains(s, "year"):
			return QueryTrend, 365
		case strings.Contains(s, "month"):
			return QueryTrend, 30
		case strings.Contains(s, "week"):
			return QueryTrend, 7
		case strings.Contains(s, "day"), strings.Contains(s, "today"):
			return QueryTrend, 1
		}
		return QueryTrend, 7
	}
	return QueryTrend, 7
}

// MapBrowseSort translates a sort method into the community browse page's
// browsesort parameter and its days window. Unlike the Web API, the browse
// page has a real "Last Updated" board.
func MapBrowseSort(method string) (sort string, days int) {
	s := strings.ToLower(strings.TrimSpace(method))
	switch {
	case s == "most recent" || s == "newest" || s == "recent":
		return "mostrecent", 0
	case s == "top rated" || s == "most up votes" || s == "most upvoted":
		return "vote", 0
	case s == "most subscriptions" || s == "most subscribed" || s == "subscribed":
		return "totaluniquesubscribers", 0
	case s == "last updated" || s == "recently updated" || s == "updated":
		return "lastupdated", 0
	case strings.HasPrefix(s, "most popular"):
		switch {
		case strings.Contains(s, "year"):
			return "trend", 365
		case strings.Contains(s, "month"):
			return "trend", 30
		case strings.Contains(s, "week"):
			return "trend", 7
		case strings.Contains(s, "day"), strings.Contains(s, "today"):
			return "trend", 1
		}
		return "trend", 7
	}
	return "trend", 7
}
