package port

import (
	"context"

	"github.com/nftmarket/auction-engine/internal/domain"
)

// EventSink receives notifications after successful state changes. Emission
// is best-effort: a sink failure never rolls back the operation that caused
// the event.
type EventSink interface {
	Emit(ctx context.Context, e domain.Event)
}
