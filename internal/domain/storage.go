package domain

import (
	"context"
	"time"
)

// Durable storage keys. These are the only persisted artifacts.
const (
	StorageKeyUser            = "user"
	StorageKeyWalletConnected = "walletConnected"
	StorageKeyWalletAddress   = "walletAddress"
)

// KeyValueStore is the durable string key-value port the stores persist through.
// Get returns ErrKeyNotFound when the key is absent; Delete of an absent key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Clock supplies timestamps and the simulated remote-call latency.
// Sleep returns ctx.Err() if the context ends first.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// IDGenerator synthesizes record identifiers such as "event-<suffix>".
type IDGenerator interface {
	NewID(prefix string) string
}
