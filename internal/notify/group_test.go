package notify

import (
	"testing"
	"time"

	"github.com/nhle/fintrack/internal/model"
)

func TestGroupByDay_Buckets(t *testing.T) {
	day := func(days, hour int) time.Time {
		return time.Date(testNow.Year(), testNow.Month(), testNow.Day()-days, hour, 0, 0, 0, time.UTC)
	}

	items := []model.Notification{
		{ID: "today-early", CreatedAt: day(0, 0)},
		{ID: "today-late", CreatedAt: day(0, 13)},
		{ID: "future", CreatedAt: testNow.Add(time.Hour)},
		{ID: "yesterday-late", CreatedAt: day(1, 23)},
		{ID: "yesterday-early", CreatedAt: day(1, 1)},
		{ID: "six-days", CreatedAt: day(6, 12)},
		{ID: "two-days", CreatedAt: day(2, 12)},
		{ID: "seven-days", CreatedAt: day(7, 12)},
		{ID: "eight-days", CreatedAt: day(8, 12)},
	}

	groups := GroupByDay(items, testNow)

	want := map[string][]model.ID{
		BucketToday:     {"future", "today-late", "today-early"},
		BucketYesterday: {"yesterday-late", "yesterday-early"},
		BucketThisWeek:  {"two-days", "six-days"},
	}

	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	order := []string{BucketToday, BucketYesterday, BucketThisWeek}
	for i, g := range groups {
		if g.Title != order[i] {
			t.Errorf("group %d = %q, want %q", i, g.Title, order[i])
		}
		var ids []model.ID
		for _, n := range g.Notifications {
			ids = append(ids, n.ID)
		}
		if len(ids) != len(want[g.Title]) {
			t.Errorf("%s: got %v, want %v", g.Title, ids, want[g.Title])
			continue
		}
		for j := range ids {
			if ids[j] != want[g.Title][j] {
				t.Errorf("%s: got %v, want %v", g.Title, ids, want[g.Title])
				break
			}
		}
	}
}

func TestGroupByDay_OmitsEmptyBuckets(t *testing.T) {
	groups := GroupByDay([]model.Notification{
		{ID: "1", CreatedAt: testNow.AddDate(0, 0, -1)},
	}, testNow)

	if len(groups) != 1 || groups[0].Title != BucketYesterday {
		t.Fatalf("groups = %+v", groups)
	}
	if GroupByDay(nil, testNow) != nil {
		t.Error("expected nil groups for no input")
	}
}

func TestGroupByDay_CalendarDaysInClockZone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, loc)

	// Same UTC day as now, but 23:00 on the 14th in UTC+10.
	n := model.Notification{ID: "x", CreatedAt: time.Date(2026, 10, 14, 13, 0, 0, 0, time.UTC)}

	groups := GroupByDay([]model.Notification{n}, now)
	if len(groups) != 1 || groups[0].Title != BucketYesterday {
		t.Fatalf("groups = %+v", groups)
	}
	if !groups[0].Notifications[0].CreatedAt.Equal(n.CreatedAt) {
		t.Error("CreatedAt changed during grouping")
	}
}

func TestSummarize_Additive(t *testing.T) {
	remote := &model.Summary{
		Total:  10,
		Unread: 4,
		ByCategory: map[string]int{
			"all":          99,
			"transactions": 3,
			"bills":        1,
		},
	}
	local := []model.Notification{
		{Category: model.CategoryTransactions},
		{Category: model.CategoryBudget},
		{Category: model.CategoryBudget, IsRead: true},
	}

	s := Summarize(remote, local)

	if s.Total != 13 {
		t.Errorf("Total = %d, want 13", s.Total)
	}
	if s.Unread != 6 {
		t.Errorf("Unread = %d, want 6", s.Unread)
	}
	want := map[model.Category]int{
		model.CategoryAll:          13,
		model.CategoryTransactions: 4,
		model.CategoryBudget:       1,
		model.CategoryBills:        1,
		model.CategorySecurity:     0,
	}
	for c, v := range want {
		got, ok := s.ByCategory[string(c)]
		if !ok {
			t.Errorf("missing key %s", c)
		}
		if got != v {
			t.Errorf("ByCategory[%s] = %d, want %d", c, got, v)
		}
	}
}

func TestSummarize_NilRemoteAndNegativeCounts(t *testing.T) {
	local := []model.Notification{{Category: model.CategorySecurity}}

	s := Summarize(nil, local)
	if s.Total != 1 || s.Unread != 1 || s.Count(model.CategoryAll) != 1 || s.Count(model.CategorySecurity) != 1 {
		t.Errorf("Summarize(nil) = %+v", s)
	}

	s = Summarize(&model.Summary{Total: -3, Unread: -1, ByCategory: map[string]int{"bills": -2}}, nil)
	if s.Total != 0 || s.Unread != 0 || s.Count(model.CategoryBills) != 0 {
		t.Errorf("negative counts leaked: %+v", s)
	}
}
