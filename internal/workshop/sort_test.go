package workshop

import "testing"

func TestMapSort(t *testing.T) {
	cases := []struct {
		method    string
		queryType int
		days      int
	}{
		{"Most Recent", QueryRecent, 0},
		{"newest", QueryRecent, 0},
		{"Top Rated", QueryTopRated, 0},
		{"Most Subscriptions", QuerySubscribed, 0},
		{"Last Updated", QueryRecent, 0},
		{"Most Popular (This Week)", QueryTrend, 7},
		{"most popular today", QueryTrend, 1},
		{"Most Popular (This Month)", QueryTrend, 30},
		{"Most Popular (This Year)", QueryTrend, 365},
		{"Most Popular", QueryTrend, 7},
		{"", QueryTrend, 7},
		{"garbage", QueryTrend, 7},
	}
	for _, tc := range cases {
		queryType, days := MapSort(tc.method)
		if queryType != tc.queryType || days != tc.days {
			t.Errorf("MapSort(%q) = (%d, %d), want (%d, %d)",
				tc.method, queryType, days, tc.queryType, tc.days)
		}
	}
}

func TestMapBrowseSort(t *testing.T) {
	cases := []struct {
		method string
		sort   string
		days   int
	}{
		{"Most Recent", "mostrecent", 0},
		{"Top Rated", "vote", 0},
		{"Most Subscriptions", "totaluniquesubscribers", 0},
		{"Last Updated", "lastupdated", 0},
		{"Most Popular (This Week)", "trend", 7},
		{"most popular today", "trend", 1},
		{"Most Popular (This Month)", "trend", 30},
		{"Most Popular (This Year)", "trend", 365},
		{"", "trend", 7},
		{"garbage", "trend", 7},
	}
	for _, tc := range cases {
		sort, days := MapBrowseSort(tc.method)
		if sort != tc.sort || days != tc.days {
			t.Errorf("MapBrowseSort(%q) = (%q, %d), want (%q, %d)",
				tc.method, sort, days, tc.sort, tc.days)
		}
	}
}
