package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "custody/internal/jwt_token"
	id "custody/pkg/domain"
)

func TestMint(t *testing.T) {
	opts := options{
		Address:    "0x00000000000000000000000000000000000000b1",
		SigningKey: "test-key",
		Issuer:     "custody",
		Audience:   "custody-api",
		TTL:        time.Hour,
	}

	token, err := mint(opts)
	require.NoError(t, err)

	svc := jwttoken.NewJWTService(opts.SigningKey, opts.Issuer, opts.Audience)
	addr, err := svc.ExtractAddressFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.MustParseAddress(opts.Address), addr)

	opts.Address = "not-an-address"
	_, err = mint(opts)
	assert.Error(t, err)
}
