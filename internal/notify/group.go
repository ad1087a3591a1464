package notify

import (
	"sort"
	"time"

	"github.com/nhle/fintrack/internal/model"
)

// Bucket titles in display order.
const (
	BucketToday     = "Today"
	BucketYesterday = "Yesterday"
	BucketThisWeek  = "Earlier This Week"
)

// windowDays bounds presentation: items this many calendar days old or
// older are dropped from the grouped view.
const windowDays = 7

// dayDiff returns how many calendar days t lies before now, compared in
// now's location. Future timestamps give a negative result.
func dayDiff(t, now time.Time) int {
	ty, tm, td := t.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	a := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	b := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// bucketFor names the bucket for t, or "" when t is outside the window.
func bucketFor(t, now time.Time) string {
	switch d := dayDiff(t, now); {
	case d <= 0:
		return BucketToday
	case d == 1:
		return BucketYesterday
	case d < windowDays:
		return BucketThisWeek
	default:
		return ""
	}
}

// GroupByDay partitions items into recency buckets, newest first within
// each bucket. Empty buckets are omitted.
func GroupByDay(items []model.Notification, now time.Time) []model.Group {
	buckets := map[string][]model.Notification{}
	for _, n := range items {
		if title := bucketFor(n.CreatedAt, now); title != "" {
			buckets[title] = append(buckets[title], n)
		}
	}

	var groups []model.Group
	for _, title := range []string{BucketToday, BucketYesterday, BucketThisWeek} {
		list := buckets[title]
		if len(list) == 0 {
			continue
		}
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
		groups = append(groups, model.Group{Title: title, Notifications: list})
	}
	return groups
}

// Summarize adds counts scanned from the full local list to the remote
// summary. A nil remote contributes nothing. Missing keys count as zero
// and no count is ever negative.
func Summarize(remote *model.Summary, local []model.Notification) model.Summary {
	var r model.Summary
	if remote != nil {
		r = *remote
	}

	localUnread := 0
	localByCategory := map[model.Category]int{}
	for _, n := range local {
		if !n.IsRead {
			localUnread++
			localByCategory[n.Category]++
		}
	}

	out := model.Summary{
		Total:      nonNegative(r.Total) + len(local),
		Unread:     nonNegative(r.Unread) + localUnread,
		ByCategory: map[string]int{},
	}

	for key, v := range r.ByCategory {
		if key != string(model.CategoryAll) {
			out.ByCategory[key] += nonNegative(v)
		}
	}
	for c, v := range localByCategory {
		out.ByCategory[string(c)] += v
	}
	for _, c := range model.Categories {
		if _, ok := out.ByCategory[string(c)]; !ok {
			out.ByCategory[string(c)] = 0
		}
	}
	out.ByCategory[string(model.CategoryAll)] = len(local) + nonNegative(r.Total)

	return out
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
