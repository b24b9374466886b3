package handler

import (
	"custody/internal/custody/models"
	id "custody/pkg/domain"
)

type AdministratorResponse struct {
	Administrator id.Address `json:"administrator"`
}

type ActorResponse struct {
	Address    id.Address `json:"address"`
	Role       uint8      `json:"role"`
	RoleName   string     `json:"role_name"`
	Enabled    bool       `json:"enabled"`
	Registered bool       `json:"registered"`
}

func toActorResponse(v models.ActorView) ActorResponse {
	return ActorResponse{
		Address:    v.Address,
		Role:       uint8(v.Role),
		RoleName:   v.Role.String(),
		Enabled:    v.Enabled,
		Registered: v.Registered,
	}
}

type RegisterAssetResponse struct {
	AssetID uint64 `json:"asset_id"`
}

type AssetCountResponse struct {
	Total uint64 `json:"total"`
}

type AssetResponse struct {
	AssetID        uint64       `json:"asset_id"`
	AssetType      string       `json:"asset_type"`
	ProductionDate int64        `json:"production_date"`
	Origin         string       `json:"origin"`
	Producer       id.Address   `json:"producer"`
	HolderHistory  []id.Address `json:"holder_history"`
}

func toAssetResponse(v models.AssetView) AssetResponse {
	return AssetResponse{
		AssetID:        uint64(v.ID),
		AssetType:      v.AssetType,
		ProductionDate: v.ProductionDate,
		Origin:         v.Origin,
		Producer:       v.Producer,
		HolderHistory:  v.HolderHistory,
	}
}

type HolderResponse struct {
	AssetID uint64     `json:"asset_id"`
	Holder  id.Address `json:"holder"`
}

type HistoryResponse struct {
	AssetID       uint64       `json:"asset_id"`
	HolderHistory []id.Address `json:"holder_history"`
}

// CustodyErrorResponse carries a rejected call's rule name. Account is set
// for access-control failures.
type CustodyErrorResponse struct {
	Error            string     `json:"error"`
	ErrorDescription string     `json:"error_description,omitempty"`
	Account          id.Address `json:"account,omitempty"`
}
