package testutil

import (
	"net/http"
	"time"

	id "custody/pkg/domain"
	"custody/pkg/requestcontext"
)

// WithCaller puts the caller on the request context the way RequireAuth does.
// An unparseable address leaves the request anonymous.
func WithCaller(req *http.Request, address string) *http.Request {
	if caller, err := id.ParseAddress(address); err == nil {
		return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
	}
	return req
}

// WithAuth also attaches a token id valid for an hour, as needed by
// revocation.
func WithAuth(req *http.Request, address, jti string) *http.Request {
	req = WithCaller(req, address)
	ctx := requestcontext.WithToken(req.Context(), jti, time.Now().Add(time.Hour))
	return req.WithContext(ctx)
}
