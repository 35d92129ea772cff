package port

import (
	"context"

	"github.com/nftmarket/auction-engine/internal/domain"
)

// AssetRegistry owns asset records and their ownership index. The market
// consults it for ownership checks and rewrites ownership on completion; it
// never holds its own copy of an asset.
type AssetRegistry interface {
	// Create stores a new asset owned by owner and returns its id.
	// Fails with domain.ErrCounterOverflow when the id space is exhausted.
	Create(ctx context.Context, owner domain.Account, data []byte) (domain.AssetID, error)
	// Remove deletes the asset record. The caller is responsible for
	// ownership and listing checks.
	Remove(ctx context.Context, id domain.AssetID) error
	// OwnerOf returns the current owner, or domain.ErrAssetNotFound.
	OwnerOf(ctx context.Context, id domain.AssetID) (domain.Account, error)
	// SetOwner rewrites ownership of an existing asset.
	SetOwner(ctx context.Context, id domain.AssetID, owner domain.Account) error
	// Exists reports whether the asset record is present.
	Exists(ctx context.Context, id domain.AssetID) bool
}
