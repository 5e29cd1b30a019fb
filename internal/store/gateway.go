// Package store provides persistence gateways for the reconciliation store.
package store

import (
	"context"

	"github.com/bingokit/drawsync/internal/draw"
)

// Gateway persists the reconciliation store between runs.
//
// Load never fails: a missing, unreadable, or unparsable store is treated as
// an empty one, so a fresh deployment and a corrupted file both converge by
// re-acquisition. Save failures are fatal to the run; silent data loss is
// disallowed.
type Gateway interface {
	Load(ctx context.Context) draw.Store
	Save(ctx context.Context, s draw.Store) error
}
