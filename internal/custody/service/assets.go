package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"custody/internal/custody/models"
	"custody/internal/custody/store"
	id "custody/pkg/domain"
	audit "custody/pkg/platform/audit"
	"custody/pkg/platform/sentinel"
)

// RegisterAsset records a new asset held by its producer and returns its id.
// Ids are sequential from 1 and never reused.
func (s *Service) RegisterAsset(ctx context.Context, caller id.Address, details models.AssetDetails) (id.AssetID, error) {
	var assetID id.AssetID
	err := s.run(ctx, "register_asset", func(ctx context.Context, st store.Store) error {
		enabled, err := s.isEnabled(ctx, st, caller)
		if err != nil {
			return err
		}
		if !enabled {
			return models.ErrActorNotEnabled
		}
		role, err := s.roleOf(ctx, st, caller)
		if err != nil {
			return err
		}
		if role != models.RoleProducer {
			return models.ErrWrongRole
		}

		assetID, err = st.CreateAsset(ctx, details, caller)
		if err != nil {
			return storeErr(err, "failed to store asset")
		}
		return s.emit(ctx, audit.Event{
			Action:  string(audit.EventAssetRegistered),
			Caller:  caller.String(),
			AssetID: uint64(assetID),
			To:      caller.String(),
		})
	}, attribute.String("custody.caller", caller.String()))
	if err != nil {
		return 0, err
	}
	s.metrics.IncrementAssetsRegistered()
	s.logger.InfoContext(ctx, "asset registered",
		"asset_id", uint64(assetID),
		"producer", caller,
		"asset_type", details.AssetType,
	)
	return assetID, nil
}

// GetTotalAssetNumber returns the number of assets ever registered.
func (s *Service) GetTotalAssetNumber(ctx context.Context) (uint64, error) {
	var count uint64
	err := s.run(ctx, "get_total_asset_number", func(ctx context.Context, st store.Store) error {
		var err error
		count, err = st.AssetCount(ctx)
		if err != nil {
			return storeErr(err, "failed to count assets")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Service) GetAsset(ctx context.Context, assetID id.AssetID) (models.AssetView, error) {
	var view models.AssetView
	err := s.run(ctx, "get_asset", func(ctx context.Context, st store.Store) error {
		asset, err := s.loadAsset(ctx, st, assetID)
		if err != nil {
			return err
		}
		view = asset.View()
		return nil
	}, attribute.Int64("custody.asset_id", int64(assetID)))
	if err != nil {
		return models.AssetView{}, err
	}
	return view, nil
}

func (s *Service) GetAssetCurrentHolder(ctx context.Context, assetID id.AssetID) (id.Address, error) {
	var holder id.Address
	err := s.run(ctx, "get_asset_current_holder", func(ctx context.Context, st store.Store) error {
		asset, err := s.loadAsset(ctx, st, assetID)
		if err != nil {
			return err
		}
		holder = asset.CurrentHolder()
		return nil
	}, attribute.Int64("custody.asset_id", int64(assetID)))
	if err != nil {
		return "", err
	}
	return holder, nil
}

// GetAssetHolderHistory returns every holder in custody order, producer first.
func (s *Service) GetAssetHolderHistory(ctx context.Context, assetID id.AssetID) ([]id.Address, error) {
	var history []id.Address
	err := s.run(ctx, "get_asset_holder_history", func(ctx context.Context, st store.Store) error {
		asset, err := s.loadAsset(ctx, st, assetID)
		if err != nil {
			return err
		}
		history = asset.View().HolderHistory
		return nil
	}, attribute.Int64("custody.asset_id", int64(assetID)))
	if err != nil {
		return nil, err
	}
	return history, nil
}

// validAssetID reports whether assetID names a registered asset.
func validAssetID(ctx context.Context, st store.Store, assetID id.AssetID) (bool, error) {
	count, err := st.AssetCount(ctx)
	if err != nil {
		return false, storeErr(err, "failed to count assets")
	}
	return assetID != 0 && uint64(assetID) <= count, nil
}

// loadAsset fails with ErrInvalidAssetID for ids outside 1..count.
func (s *Service) loadAsset(ctx context.Context, st store.Store, assetID id.AssetID) (models.Asset, error) {
	ok, err := validAssetID(ctx, st, assetID)
	if err != nil {
		return models.Asset{}, err
	}
	if !ok {
		return models.Asset{}, models.ErrInvalidAssetID
	}
	asset, err := st.FindAsset(ctx, assetID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Asset{}, storeErr(err, "asset missing below counter")
	}
	if err != nil {
		return models.Asset{}, storeErr(err, "failed to load asset")
	}
	return asset, nil
}

// currentHolderOf returns ZeroAddress for ids that name no asset.
func (s *Service) currentHolderOf(ctx context.Context, st store.Store, assetID id.AssetID) (id.Address, error) {
	ok, err := validAssetID(ctx, st, assetID)
	if err != nil {
		return "", err
	}
	if !ok {
		return id.ZeroAddress, nil
	}
	asset, err := st.FindAsset(ctx, assetID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return id.ZeroAddress, nil
	}
	if err != nil {
		return "", storeErr(err, "failed to load asset")
	}
	return asset.CurrentHolder(), nil
}

// appendHolder is the only path that extends a custody chain.
func (s *Service) appendHolder(ctx context.Context, st store.Store, assetID id.AssetID, holder id.Address) error {
	if err := st.AppendHolder(ctx, assetID, holder); err != nil {
		return storeErr(err, "failed to append holder")
	}
	return nil
}
