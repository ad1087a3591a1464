package finance

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/source"
)

const notificationsPath = "/notifications"

// Adapter implements source.Remote for the finance backend.
type Adapter struct {
	client      *Client
	pageSize    int
	includeRead bool
}

var _ source.Remote = (*Adapter)(nil)

// NewAdapter creates a remote notification source from configuration.
func NewAdapter(
	api model.APIConfig,
	breaker model.BreakerConfig,
	token string,
	log logrus.FieldLogger,
) *Adapter {
	client := NewClient(api.BaseURL, token, ClientOptions{
		Timeout:            time.Duration(api.TimeoutSec) * time.Second,
		MaxRetries:         api.MaxRetries,
		BreakerMaxFailures: breaker.MaxFailures,
		BreakerOpenTimeout: time.Duration(breaker.OpenTimeoutSec) * time.Second,
		Logger:             log,
	})

	pageSize := api.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	return &Adapter{
		client:      client,
		pageSize:    pageSize,
		includeRead: api.IncludeRead,
	}
}

// SetToken swaps the API token, e.g. after the user enters a new one.
func (a *Adapter) SetToken(token string) {
	a.client.SetToken(token)
}

// FeedOptions returns the configured defaults for a category query.
func (a *Adapter) FeedOptions(category model.Category) source.FeedOptions {
	return source.FeedOptions{
		Category:    category,
		Limit:       a.pageSize,
		IncludeRead: a.includeRead,
	}
}

// ListNotifications calls GET /notifications with the given filter.
func (a *Adapter) ListNotifications(
	ctx context.Context,
	opts source.FeedOptions,
) (*model.Feed, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = a.pageSize
	}

	q := url.Values{}
	if opts.Category != "" && opts.Category != model.CategoryAll {
		q.Set("category", string(opts.Category))
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(opts.Skip))
	q.Set("include_read", strconv.FormatBool(opts.IncludeRead))

	var feed model.Feed
	if err := a.client.Get(ctx, notificationsPath+"?"+q.Encode(), &feed); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	for gi := range feed.Groups {
		for ni := range feed.Groups[gi].Notifications {
			feed.Groups[gi].Notifications[ni].Source = model.SourceRemote
		}
	}

	return &feed, nil
}

// Summary calls GET /notifications/summary.
func (a *Adapter) Summary(ctx context.Context) (*model.Summary, error) {
	var summary model.Summary
	if err := a.client.Get(ctx, notificationsPath+"/summary", &summary); err != nil {
		return nil, fmt.Errorf("fetching notification summary: %w", err)
	}
	return &summary, nil
}

// MarkRead calls PUT /notifications/{id} with {"is_read": true}.
func (a *Adapter) MarkRead(ctx context.Context, id model.ID) error {
	err := a.client.Put(ctx, itemPath(id), markReadRequest{IsRead: true}, nil)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// Delete calls DELETE /notifications/{id}.
func (a *Adapter) Delete(ctx context.Context, id model.ID) error {
	if err := a.client.Delete(ctx, itemPath(id), nil); err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	return nil
}

// MarkAllRead calls POST /notifications/mark-all-read, which marks every
// unread notification of the category read on the server in one request.
// It returns the server's confirmation message.
func (a *Adapter) MarkAllRead(ctx context.Context, category model.Category) (string, error) {
	path := notificationsPath + "/mark-all-read"
	if category != "" && category != model.CategoryAll {
		path += "?" + url.Values{"category": {string(category)}}.Encode()
	}

	var resp MessageResponse
	if err := a.client.Post(ctx, path, nil, &resp); err != nil {
		return "", fmt.Errorf("marking all notifications read: %w", err)
	}
	return resp.Message, nil
}

func itemPath(id model.ID) string {
	return notificationsPath + "/" + url.PathEscape(id.String())
}
