// Package transport specifies the push-transport contract a collaborator
// must implement to feed the parser front end. It declares only
// the interface; subscription, reconnection, and backpressure handling are
// explicitly out of scope and belong to the caller's
// own client, not this module.
package transport

import (
	"context"

	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// Subscriber delivers transaction updates to a handler until ctx is
// canceled or the upstream connection ends. Implementations own their own
// reconnection policy; this module treats every call as a single session.
type Subscriber interface {
	// Subscribe blocks, invoking handle for each TransactionUpdate it
	// receives, until the connection ends or ctx is canceled. A non-nil
	// error other than context.Canceled indicates the session ended
	// abnormally.
	Subscribe(ctx context.Context, handle func(models.TransactionUpdate)) error
}
