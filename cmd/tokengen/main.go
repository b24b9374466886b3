// Command tokengen mints bearer tokens for local development and tests.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	jwttoken "custody/internal/jwt_token"
	"custody/internal/platform/config"
	id "custody/pkg/domain"
)

type options struct {
	Address    string        `long:"address" short:"a" required:"true" description:"Caller address the token identifies (0x-prefixed hex)"`
	SigningKey string        `long:"signing-key" env:"CUSTODY_JWT_SIGNING_KEY" default:"dev-secret-key-change-in-production" description:"HMAC key shared with the server"`
	Issuer     string        `long:"issuer" env:"CUSTODY_JWT_ISSUER" default:"custody" description:"Token issuer"`
	Audience   string        `long:"audience" env:"CUSTODY_JWT_AUDIENCE" default:"custody-api" description:"Token audience"`
	TTL        time.Duration `long:"ttl" env:"CUSTODY_TOKEN_TTL" default:"1h" description:"Token lifetime"`
}

func main() {
	opts := options{}
	if _, err := flags.Parse(&opts); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		log.Fatalf("failed to parse flags: %v", err)
	}

	token, err := mint(opts)
	if err != nil {
		log.Fatalf("failed to mint token: %v", err)
	}
	fmt.Fprintln(os.Stdout, token)
}

func mint(opts options) (string, error) {
	address, err := id.ParseAddress(opts.Address)
	if err != nil {
		return "", fmt.Errorf("parse address: %w", err)
	}
	if opts.SigningKey == config.DevSigningKey {
		log.Print("warning: signing with the development key")
	}
	svc := jwttoken.NewJWTService(opts.SigningKey, opts.Issuer, opts.Audience)
	return svc.GenerateAccessToken(address, opts.TTL)
}
