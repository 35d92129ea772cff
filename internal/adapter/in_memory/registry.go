package in_memory

import (
	"context"
	"math"
	"sync"

	"github.com/nftmarket/auction-engine/internal/domain"
	"github.com/nftmarket/auction-engine/internal/port"
)

var _ port.AssetRegistry = (*Registry)(nil)

// Registry is the map-backed asset registry: id -> record plus the ownership
// index, with a monotonic id counter.
type Registry struct {
	mu     sync.Mutex
	assets map[domain.AssetID]*domain.Asset
	nextID domain.AssetID
}

func NewRegistry() *Registry {
	return &Registry{assets: make(map[domain.AssetID]*domain.Asset)}
}

func (r *Registry) Create(ctx context.Context, owner domain.Account, data []byte) (domain.AssetID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nextID == math.MaxUint64 {
		return 0, domain.ErrCounterOverflow
	}
	id := r.nextID
	r.nextID++
	r.assets[id] = &domain.Asset{ID: id, Owner: owner, Data: data}
	return id, nil
}

func (r *Registry) Remove(ctx context.Context, id domain.AssetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[id]; !ok {
		return domain.ErrAssetNotFound
	}
	delete(r.assets, id)
	return nil
}

func (r *Registry) OwnerOf(ctx context.Context, id domain.AssetID) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	if !ok {
		return "", domain.ErrAssetNotFound
	}
	return a.Owner, nil
}

func (r *Registry) SetOwner(ctx context.Context, id domain.AssetID, owner domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	if !ok {
		return domain.ErrAssetNotFound
	}
	a.Owner = owner
	return nil
}

func (r *Registry) Exists(ctx context.Context, id domain.AssetID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.assets[id]
	return ok
}
