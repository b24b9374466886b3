package audit

import (
	"context"
	"strconv"
)

// Store persists audit events. Implementations must join the transaction
// carried in ctx when there is one.
type Store interface {
	Append(ctx context.Context, event Event) error
}

func formatAssetID(v uint64) string {
	return strconv.FormatUint(v, 10)
}
