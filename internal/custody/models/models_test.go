package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "custody/pkg/domain"
)

func TestRoleOrdering(t *testing.T) {
	next, ok := RoleProducer.Next()
	require.True(t, ok)
	assert.Equal(t, RoleCarrier, next)

	next, ok = RoleRetailer.Next()
	require.True(t, ok)
	assert.Equal(t, RoleConsumer, next)

	_, ok = RoleConsumer.Next()
	assert.False(t, ok)
	assert.True(t, RoleConsumer.IsTerminal())
	assert.False(t, RoleCarrier.IsTerminal())
}

func TestParseRole(t *testing.T) {
	for v := uint64(0); v <= 3; v++ {
		r, err := ParseRole(v)
		require.NoError(t, err)
		assert.Equal(t, Role(v), r)
	}
	_, err := ParseRole(4)
	assert.ErrorIs(t, err, ErrInvalidRole)

	assert.Equal(t, "Unknown", Role(9).String())
}

func TestAssetAccessors(t *testing.T) {
	p := id.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	c := id.MustParseAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	a := Asset{ID: 1, HolderHistory: []id.Address{p, c}}

	assert.Equal(t, p, a.Producer())
	assert.Equal(t, c, a.CurrentHolder())
	assert.Equal(t, id.ZeroAddress, Asset{}.CurrentHolder())

	clone := a.Clone()
	clone.HolderHistory[0] = c
	assert.Equal(t, p, a.HolderHistory[0])

	view := a.View()
	view.HolderHistory[1] = p
	assert.Equal(t, c, a.HolderHistory[1])
}

func TestErrorChannels(t *testing.T) {
	caller := id.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	wrapped := fmt.Errorf("transfer: %w", OnlyAssetOwner(caller))

	var accessErr *AccessError
	require.True(t, errors.As(wrapped, &accessErr))
	assert.Equal(t, AccessOnlyAssetOwner, accessErr.Kind)
	assert.Equal(t, caller, accessErr.Account)

	assert.ErrorIs(t, fmt.Errorf("x: %w", ErrWrongNextOwnerRole), ErrWrongNextOwnerRole)
	assert.NotErrorIs(t, ErrWrongNextOwnerRole, ErrWrongRole)
	assert.Equal(t, "Asset ID must be within valid range", ErrInvalidAssetID.Error())
}
