package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"custody/internal/custody/models"
	"custody/internal/custody/store"
	id "custody/pkg/domain"
	audit "custody/pkg/platform/audit"
)

// TransferAsset moves custody of assetID from caller to next.
//
// Checks run in a fixed order and the first failure is reported:
//  1. caller holds the asset (a nonexistent asset has no holder)
//  2. caller is not a Consumer
//  3. next is an enabled actor
//  4. next's role directly follows caller's role
func (s *Service) TransferAsset(ctx context.Context, caller id.Address, assetID id.AssetID, next id.Address) error {
	err := s.run(ctx, "transfer_asset", func(ctx context.Context, st store.Store) error {
		holder, err := s.currentHolderOf(ctx, st, assetID)
		if err != nil {
			return err
		}
		if caller.IsZero() || holder != caller {
			return models.OnlyAssetOwner(caller)
		}

		callerRole, err := s.roleOf(ctx, st, caller)
		if err != nil {
			return err
		}
		if callerRole.IsTerminal() {
			return models.ErrConsumerCannotTransfer
		}

		nextActor, err := s.lookupActor(ctx, st, next)
		if err != nil {
			return err
		}
		if !nextActor.Enabled {
			return models.ErrInvalidNextOwner
		}
		expected, _ := callerRole.Next()
		if nextActor.Role != expected {
			return models.ErrWrongNextOwnerRole
		}

		if err := s.appendHolder(ctx, st, assetID, next); err != nil {
			return err
		}
		return s.emit(ctx, audit.Event{
			Action:  string(audit.EventAssetTransfered),
			Caller:  caller.String(),
			AssetID: uint64(assetID),
			From:    caller.String(),
			To:      next.String(),
		})
	},
		attribute.String("custody.caller", caller.String()),
		attribute.Int64("custody.asset_id", int64(assetID)),
		attribute.String("custody.next_holder", next.String()),
	)
	if err != nil {
		return err
	}
	s.metrics.IncrementAssetsTransferred()
	s.logger.InfoContext(ctx, "asset transferred",
		"asset_id", uint64(assetID),
		"from", caller,
		"to", next,
	)
	return nil
}
