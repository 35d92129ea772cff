package domain

type AssetID uint64

// Asset is a uniquely identified digital item with a single current owner.
// Data is an opaque payload (a URL in practice); the engine never inspects it.
type Asset struct {
	ID    AssetID
	Owner Account
	Data  []byte
}
