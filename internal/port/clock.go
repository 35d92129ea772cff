package port

// Clock is the engine's only time source: an opaque monotonically increasing
// tick counter (block height in the original deployment). The engine reads it
// and subtracts ticks; it never advances or waits on it.
type Clock interface {
	Now() int64
}
