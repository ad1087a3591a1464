package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID identifies a notification within its owning source. Server-assigned
// ids arrive as JSON numbers; locally generated ids are strings.
type ID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding notification id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding notification id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as a plain string.
func (id ID) String() string {
	return string(id)
}

// Source records which store owns a notification.
type Source int

const (
	// SourceUnknown means ownership has not been determined; routing
	// falls back to local-store membership.
	SourceUnknown Source = iota
	SourceLocal
	SourceRemote
)

func (s Source) String() string {
	switch s {
	case SourceLocal:
		return "local"
	case SourceRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Notification is the shape shared by the remote feed and the local
// store.
type Notification struct {
	// ID is unique within the owning source.
	ID ID `json:"id"`

	// Title is the short headline.
	Title string `json:"title"`

	// Message is the body text.
	Message string `json:"message"`

	// NotificationType selects the icon and color.
	NotificationType NotificationType `json:"notification_type"`

	// Category is used for tab filtering and per-category counts.
	Category Category `json:"category"`

	// Icon overrides the default icon for NotificationType.
	Icon string `json:"icon,omitempty"`

	// IsActionable reports whether the notification offers a
	// "view details" navigation.
	IsActionable bool `json:"is_actionable"`

	// ActionURL is the explicit navigation target, if any.
	ActionURL string `json:"action_url,omitempty"`

	// TransactionID links the notification to a transaction.
	TransactionID *int64 `json:"transaction_id,omitempty"`

	// IsRead is the only mutable field.
	IsRead bool `json:"is_read"`

	// CreatedAt is immutable and must survive merging unchanged.
	CreatedAt time.Time `json:"created_at"`

	// Source is assigned at merge time and never persisted.
	Source Source `json:"-"`
}

// Ref returns the routing reference for this notification.
func (n Notification) Ref() Ref {
	return Ref{ID: n.ID, Source: n.Source}
}

// UnmarshalJSON decodes a notification, accepting both RFC 3339 and
// naive ISO-8601 timestamps for created_at.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type alias Notification
	aux := struct {
		*alias
		CreatedAt string `json:"created_at"`
	}{alias: (*alias)(n)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.CreatedAt == "" {
		n.CreatedAt = time.Time{}
		return nil
	}

	t, err := ParseTimestamp(aux.CreatedAt)
	if err != nil {
		return err
	}
	n.CreatedAt = t
	return nil
}

// timestampLayouts lists accepted created_at formats in preference order.
// Layouts without a zone are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses an ISO-8601 timestamp as produced by the backend.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: unrecognized format", s)
}

// Ref addresses a notification for a mutation.
type Ref struct {
	ID     ID
	Source Source
}

// Group is a titled recency bucket of notifications.
type Group struct {
	Title         string         `json:"title"`
	Notifications []Notification `json:"notifications"`
}

// Summary holds notification counts.
type Summary struct {
	Total      int            `json:"total"`
	Unread     int            `json:"unread"`
	ByCategory map[string]int `json:"by_category"`
}

// Count returns the count for key, treating a missing key as 0.
func (s Summary) Count(key Category) int {
	if s.ByCategory == nil {
		return 0
	}
	return s.ByCategory[string(key)]
}

// Feed is the grouped list response of the remote API.
type Feed struct {
	Groups  []Group `json:"groups"`
	Summary Summary `json:"summary"`
}

// Flatten returns every notification in feed order.
func (f Feed) Flatten() []Notification {
	var out []Notification
	for _, g := range f.Groups {
		out = append(out, g.Notifications...)
	}
	return out
}
