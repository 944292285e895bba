package domain

import "context"

// Placeholder balances shown for the simulated wallet.
const (
	WalletConnectBalance = "1.5 ETH"
	WalletRestoreBalance = "0.0 ETH"
)

// WalletSession is the simulated external-account connection state.
// swagger:model WalletSession
type WalletSession struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address,omitempty"`
	Balance   string `json:"balance,omitempty"`
}

// AddressGenerator produces a 0x-prefixed, 40 hex digit account address.
type AddressGenerator interface {
	NewAddress() (string, error)
}

// SessionStore owns the wallet connection session.
type SessionStore interface {
	Connect(ctx context.Context) (string, error)
	Disconnect(ctx context.Context) error
	Session() WalletSession
	Pending() int
	Subscribe(fn func(WalletSession)) (unsubscribe func())
}
