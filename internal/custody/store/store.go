// Package store persists custody state: the administrator, the actor map,
// the asset map and the asset id counter.
//
// Every read and write goes through TxRunner.RunInTx, which serializes calls
// and applies the writes of a successful call atomically. A call whose
// callback returns an error leaves no trace.
package store

import (
	"context"
	"time"

	"custody/internal/custody/models"
	id "custody/pkg/domain"
	dErrors "custody/pkg/domain-errors"
)

// Store is the view of custody state available inside one transaction.
// Lookups of missing records return sentinel.ErrNotFound.
type Store interface {
	Administrator(ctx context.Context) (id.Address, error)
	SetAdministrator(ctx context.Context, admin id.Address) error

	FindActor(ctx context.Context, addr id.Address) (models.Actor, error)
	SaveActor(ctx context.Context, actor models.Actor) error

	AssetCount(ctx context.Context) (uint64, error)
	FindAsset(ctx context.Context, assetID id.AssetID) (models.Asset, error)
	// CreateAsset allocates the next sequential id and stores the asset with
	// producer as the only holder.
	CreateAsset(ctx context.Context, details models.AssetDetails, producer id.Address) (id.AssetID, error)
	AppendHolder(ctx context.Context, assetID id.AssetID, holder id.Address) error
}

// TxRunner runs fn as one serialized, all-or-nothing unit. The ctx passed to
// fn carries the transaction so collaborators such as the audit outbox can
// join it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

const defaultTxTimeout = 5 * time.Second

// withTxDeadline applies the default timeout when ctx has no deadline.
func withTxDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func abortedErr(err error) error {
	return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
}
