package handler

import (
	"strings"

	"custody/internal/custody/models"
	id "custody/pkg/domain"
	dErrors "custody/pkg/domain-errors"
)

const maxAssetTextLength = 256

type RegisterActorRequest struct {
	Address string  `json:"address"`
	Role    *uint64 `json:"role"`

	address id.Address
	role    models.Role
}

func (r *RegisterActorRequest) Validate() error {
	addr, err := id.ParseAddress(strings.TrimSpace(r.Address))
	if err != nil {
		return err
	}
	if r.Role == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "role is required")
	}
	role, err := models.ParseRole(*r.Role)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, models.ErrInvalidRole.Message)
	}
	r.address = addr
	r.role = role
	return nil
}

type RegisterAssetRequest struct {
	AssetType      string `json:"asset_type"`
	ProductionDate *int64 `json:"production_date"`
	Origin         string `json:"origin"`
}

func (r *RegisterAssetRequest) Validate() error {
	if r.ProductionDate == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "production_date is required")
	}
	if len(r.AssetType) > maxAssetTextLength {
		return dErrors.New(dErrors.CodeInvalidInput, "asset_type is too long")
	}
	if len(r.Origin) > maxAssetTextLength {
		return dErrors.New(dErrors.CodeInvalidInput, "origin is too long")
	}
	return nil
}

func (r *RegisterAssetRequest) details() models.AssetDetails {
	return models.AssetDetails{
		AssetType:      r.AssetType,
		ProductionDate: *r.ProductionDate,
		Origin:         r.Origin,
	}
}

type TransferAssetRequest struct {
	NextHolder string `json:"next_holder"`

	nextHolder id.Address
}

// Validate accepts the zero address; the transfer checks reject it in order.
func (r *TransferAssetRequest) Validate() error {
	addr, err := id.ParseAddressOrZero(strings.TrimSpace(r.NextHolder))
	if err != nil {
		return err
	}
	r.nextHolder = addr
	return nil
}

type TransferAdministrationRequest struct {
	NewAdministrator string `json:"new_administrator"`

	newAdministrator id.Address
}

func (r *TransferAdministrationRequest) Validate() error {
	addr, err := id.ParseAddress(strings.TrimSpace(r.NewAdministrator))
	if err != nil {
		return err
	}
	r.newAdministrator = addr
	return nil
}
