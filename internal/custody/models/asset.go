package models

import (
	id "custody/pkg/domain"
)

// AssetDetails are the immutable attributes supplied at registration.
type AssetDetails struct {
	AssetType      string
	ProductionDate int64
	Origin         string
}

// Asset is a registered asset with its full custody chain.
//
// Invariants:
//   - HolderHistory is never empty; the first entry is the producer
//   - HolderHistory only grows, one entry per successful transfer
type Asset struct {
	ID id.AssetID
	AssetDetails
	HolderHistory []id.Address
}

// Producer is the registering actor, fixed for the asset's lifetime.
func (a Asset) Producer() id.Address {
	if len(a.HolderHistory) == 0 {
		return id.ZeroAddress
	}
	return a.HolderHistory[0]
}

// CurrentHolder is the last entry of the custody chain.
func (a Asset) CurrentHolder() id.Address {
	if len(a.HolderHistory) == 0 {
		return id.ZeroAddress
	}
	return a.HolderHistory[len(a.HolderHistory)-1]
}

// Clone returns a copy whose history can be appended to independently.
func (a Asset) Clone() Asset {
	a.HolderHistory = append([]id.Address(nil), a.HolderHistory...)
	return a
}

// AssetView is what GetAsset returns.
type AssetView struct {
	ID             id.AssetID
	AssetType      string
	ProductionDate int64
	Origin         string
	Producer       id.Address
	HolderHistory  []id.Address
}

// View projects an asset for readers; the history is copied.
func (a Asset) View() AssetView {
	return AssetView{
		ID:             a.ID,
		AssetType:      a.AssetType,
		ProductionDate: a.ProductionDate,
		Origin:         a.Origin,
		Producer:       a.Producer(),
		HolderHistory:  append([]id.Address(nil), a.HolderHistory...),
	}
}
