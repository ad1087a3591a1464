package notify

import (
	"time"

	"github.com/nhle/fintrack/internal/model"
)

// DemoNotifications is the first-run set shown before any real local
// events exist. Timestamps are relative to now so the set always spans
// Today, Yesterday and Earlier This Week.
func DemoNotifications(now time.Time, newID func() model.ID) []model.Notification {
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	hoursAgo := func(h int) time.Time {
		t := now.Add(-time.Duration(h) * time.Hour)
		if t.Before(startOfToday) {
			return startOfToday
		}
		return t
	}
	daysAgoAt := func(days, hour, minute int) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day()-days, hour, minute, 0, 0, now.Location())
	}

	return []model.Notification{
		{
			ID:               newID(),
			Title:            "Large Transaction Detected",
			Message:          "$500 spent at Amazon",
			NotificationType: model.TypeLargeTransaction,
			Category:         model.CategoryTransactions,
			IsActionable:     true,
			CreatedAt:        hoursAgo(2),
			Source:           model.SourceLocal,
		},
		{
			ID:               newID(),
			Title:            "Upcoming Bill Payment",
			Message:          "Electric Bill due in 2 days",
			NotificationType: model.TypeUpcomingBill,
			Category:         model.CategoryBills,
			IsActionable:     true,
			CreatedAt:        hoursAgo(5),
			Source:           model.SourceLocal,
		},
		{
			ID:               newID(),
			Title:            "New Device Login",
			Message:          "New login from iPhone 14",
			NotificationType: model.TypeNewDeviceLogin,
			Category:         model.CategorySecurity,
			IsActionable:     true,
			IsRead:           true,
			CreatedAt:        daysAgoAt(1, 15, 30),
			Source:           model.SourceLocal,
		},
		{
			ID:               newID(),
			Title:            "Budget Goal Achieved",
			Message:          "Savings goal reached",
			NotificationType: model.TypeBudgetGoalAchieved,
			Category:         model.CategoryBudget,
			IsRead:           true,
			CreatedAt:        daysAgoAt(1, 10, 15),
			Source:           model.SourceLocal,
		},
		{
			ID:               newID(),
			Title:            "Weekly Spending Summary",
			Message:          "Your spending is on track",
			NotificationType: model.TypeWeeklySummary,
			Category:         model.CategoryBudget,
			IsRead:           true,
			CreatedAt:        daysAgoAt(3, 9, 0),
			Source:           model.SourceLocal,
		},
	}
}
