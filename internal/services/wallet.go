package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"communityhub/internal/domain"
)

// WalletOptions configures NewSessionStore.
type WalletOptions struct {
	Storage   domain.KeyValueStore
	Clock     domain.Clock
	Addresses domain.AddressGenerator
	Latency   time.Duration
	Logger    *slog.Logger
}

type sessionStore struct {
	storage   domain.KeyValueStore
	clock     domain.Clock
	addresses domain.AddressGenerator
	latency   time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	session domain.WalletSession

	pending inflight
	subs    subscribers[domain.WalletSession]
}

// NewSessionStore restores the wallet session. The flag and the address are stored
// as two entries; anything short of both being present restores as disconnected.
func NewSessionStore(ctx context.Context, opts WalletOptions) domain.SessionStore {
	s := &sessionStore{
		storage:   opts.Storage,
		clock:     opts.Clock,
		addresses: opts.Addresses,
		latency:   opts.Latency,
		logger:    discardIfNil(opts.Logger),
	}
	s.restore(ctx)
	return s
}

func (s *sessionStore) restore(ctx context.Context) {
	flag, err := s.storage.Get(ctx, domain.StorageKeyWalletConnected)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.WarnContext(ctx, "restore wallet: read flag", "err", err)
		}
		return
	}
	addr, err := s.storage.Get(ctx, domain.StorageKeyWalletAddress)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.WarnContext(ctx, "restore wallet: read address", "err", err)
		}
		return
	}
	if flag != "true" || addr == "" {
		return
	}
	s.session = domain.WalletSession{
		Connected: true,
		Address:   addr,
		Balance:   domain.WalletRestoreBalance,
	}
}

// Connect is not guarded against concurrent calls; the last to complete owns the
// stored address. Like Disconnect it runs to completion once started.
func (s *sessionStore) Connect(ctx context.Context) (string, error) {
	defer s.pending.begin()()
	ctx = context.WithoutCancel(ctx)

	if err := s.clock.Sleep(ctx, s.latency); err != nil {
		return "", err
	}
	addr, err := s.addresses.NewAddress()
	if err != nil {
		return "", fmt.Errorf("generate address: %w", err)
	}

	s.mu.Lock()
	if err := s.storage.Set(ctx, domain.StorageKeyWalletConnected, "true"); err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("persist wallet flag: %w", err)
	}
	if err := s.storage.Set(ctx, domain.StorageKeyWalletAddress, addr); err != nil {
		if derr := s.storage.Delete(ctx, domain.StorageKeyWalletConnected); derr != nil {
			s.logger.WarnContext(ctx, "connect: roll back wallet flag", "err", derr)
		}
		s.mu.Unlock()
		return "", fmt.Errorf("persist wallet address: %w", err)
	}
	s.session = domain.WalletSession{
		Connected: true,
		Address:   addr,
		Balance:   domain.WalletConnectBalance,
	}
	out, seq := s.session, s.subs.stamp()
	s.mu.Unlock()

	s.subs.publish(seq, out)
	return addr, nil
}

// Disconnect always clears the in-memory session and reports any failure to remove
// the persisted entries.
func (s *sessionStore) Disconnect(ctx context.Context) error {
	defer s.pending.begin()()
	ctx = context.WithoutCancel(ctx)

	if err := s.clock.Sleep(ctx, s.latency/2); err != nil {
		return err
	}

	s.mu.Lock()
	s.session = domain.WalletSession{}
	err := errors.Join(
		s.storage.Delete(ctx, domain.StorageKeyWalletConnected),
		s.storage.Delete(ctx, domain.StorageKeyWalletAddress),
	)
	seq := s.subs.stamp()
	s.mu.Unlock()

	s.subs.publish(seq, domain.WalletSession{})
	if err != nil {
		return fmt.Errorf("clear wallet storage: %w", err)
	}
	return nil
}

func (s *sessionStore) Session() domain.WalletSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *sessionStore) Pending() int {
	return s.pending.count()
}

func (s *sessionStore) Subscribe(fn func(domain.WalletSession)) func() {
	return s.subs.add(fn)
}
