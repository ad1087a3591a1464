package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Category is the closed set of notification categories. CategoryAll
// is only valid as a filter.
type Category string

const (
	CategoryAll          Category = "all"
	CategoryTransactions Category = "transactions"
	CategoryBudget       Category = "budget"
	CategoryBills        Category = "bills"
	CategorySecurity     Category = "security"
)

// Categories lists the concrete categories in tab order.
var Categories = []Category{
	CategoryTransactions,
	CategoryBudget,
	CategoryBills,
	CategorySecurity,
}

// FilterCategories lists every valid filter value in tab order.
var FilterCategories = append([]Category{CategoryAll}, Categories...)

// ParseCategory validates a filter value. The empty string means all.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CategoryAll, nil
	}
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Valid reports whether c is a known filter value.
func (c Category) Valid() bool {
	for _, fc := range FilterCategories {
		if c == fc {
			return true
		}
	}
	return false
}

// Matches reports whether a notification in category n passes filter c.
func (c Category) Matches(n Category) bool {
	return c == CategoryAll || c == n
}

// Label returns the tab label for c.
func (c Category) Label() string {
	if c == "" {
		return "All"
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// NotificationType tags what produced a notification.
type NotificationType string

const (
	TypeTransactionCreated  NotificationType = "transaction_created"
	TypeBudgetExceeded      NotificationType = "budget_exceeded"
	TypeBillReminder        NotificationType = "bill_reminder"
	TypeSecurityAlert       NotificationType = "security_alert"
	TypeLargeTransaction    NotificationType = "large_transaction"
	TypeUpcomingBill        NotificationType = "upcoming_bill"
	TypeNewDeviceLogin      NotificationType = "new_device_login"
	TypeBudgetGoalAchieved  NotificationType = "budget_goal_achieved"
	TypeWeeklySummary       NotificationType = "weekly_summary"
	TypeSubscriptionRenewal NotificationType = "subscription_renewal"
)

var defaultIcons = map[NotificationType]string{
	TypeTransactionCreated:  "cash-outline",
	TypeLargeTransaction:    "cash-outline",
	TypeBudgetExceeded:      "alert-circle-outline",
	TypeBillReminder:        "calendar-outline",
	TypeUpcomingBill:        "calendar-outline",
	TypeNewDeviceLogin:      "lock-closed-outline",
	TypeSecurityAlert:       "warning-outline",
	TypeBudgetGoalAchieved:  "checkmark-circle-outline",
	TypeWeeklySummary:       "stats-chart-outline",
	TypeSubscriptionRenewal: "refresh-outline",
}

// DefaultIcon returns the icon name used when a notification has none.
func DefaultIcon(t NotificationType) string {
	if icon, ok := defaultIcons[t]; ok {
		return icon
	}
	return "notifications-outline"
}

// IconFor returns n.Icon, or the default for its type.
func IconFor(n Notification) string {
	if n.Icon != "" {
		return n.Icon
	}
	return DefaultIcon(n.NotificationType)
}

var categoryRoutes = map[Category]string{
	CategoryTransactions: "/transactions",
	CategoryBudget:       "/budgets",
	CategoryBills:        "/bills",
	CategorySecurity:     "/security",
}

// ActionTarget resolves where "view details" navigates for n. It is
// empty when n is not actionable.
func ActionTarget(n Notification) string {
	if !n.IsActionable {
		return ""
	}
	if n.ActionURL != "" {
		return n.ActionURL
	}
	return categoryRoutes[n.Category]
}

// RelativeTime formats t relative to now, e.g. "2 hours ago".
func RelativeTime(t, now time.Time) string {
	if d := now.Sub(t); d >= 0 && d < time.Minute {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
