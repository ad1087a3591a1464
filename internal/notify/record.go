package notify

import (
	"context"
	"fmt"

	"github.com/nhle/fintrack/internal/model"
)

// Transaction is the subset of a finance transaction that can raise a
// local alert.
type Transaction struct {
	ID     int64
	Amount float64
	// Income is false for expenses.
	Income bool
}

// Record appends a locally raised notification and returns it with its
// assigned id.
func (a *Aggregator) Record(ctx context.Context, n model.Notification) (model.Notification, error) {
	if n.Category == model.CategoryAll || !n.Category.Valid() {
		return model.Notification{}, fmt.Errorf("recording notification: %w: %q", ErrInvalidCategory, n.Category)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = a.now()
	}
	saved, err := a.local.Add(ctx, n)
	if err != nil {
		return model.Notification{}, fmt.Errorf("recording notification: %w", err)
	}
	return saved, nil
}

// RecordTransaction raises a "Large Transaction Detected" alert when
// tx.Amount exceeds the configured threshold. It returns nil when no
// alert was needed.
func (a *Aggregator) RecordTransaction(ctx context.Context, tx Transaction) (*model.Notification, error) {
	if tx.Amount <= a.threshold {
		return nil, nil
	}

	verb := "spent"
	if tx.Income {
		verb = "received"
	}
	id := tx.ID

	n, err := a.Record(ctx, model.Notification{
		Title:            "Large Transaction Detected",
		Message:          fmt.Sprintf("$%.2f %s", tx.Amount, verb),
		NotificationType: model.TypeLargeTransaction,
		Category:         model.CategoryTransactions,
		IsActionable:     true,
		ActionURL:        fmt.Sprintf("/transactions/%d", tx.ID),
		TransactionID:    &id,
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}
