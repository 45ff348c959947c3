// internal/app/store/scoped/live.go
package scoped

import (
	"context"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/domain/models"
)

// Live is a typed view over a record subscription.
type Live[T models.Entity] struct {
	sub  *records.Subscription
	repo *Repo[T]
}

// Next blocks for the next snapshot. It returns the store's terminal
// *records.SubscriptionError when the query failed, and
// records.ErrSubscriptionClosed after Cancel.
func (l *Live[T]) Next(ctx context.Context) ([]T, error) {
	select {
	case snap, ok := <-l.sub.C():
		if !ok {
			if err := l.sub.Err(); err != nil {
				return nil, err
			}
			return nil, records.ErrSubscriptionClosed
		}
		return l.repo.decodeAll(snap.Records), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel ends the subscription.
func (l *Live[T]) Cancel() { l.sub.Cancel() }

// ID identifies the underlying subscription.
func (l *Live[T]) ID() string { return l.sub.ID() }
