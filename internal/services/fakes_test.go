package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"communityhub/internal/domain"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeClock returns a fixed time. Sleep returns immediately unless gate is set, in
// which case each Sleep of at least gateMin blocks until a value is received from gate.
type fakeClock struct {
	now     time.Time
	gate    chan struct{}
	gateMin time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: fixedNow}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.gate == nil || d < c.gateMin {
		return nil
	}
	select {
	case <-c.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// seqIDs yields prefix-1, prefix-2, ... per prefix, offset to avoid seeded user ids.
type seqIDs struct {
	mu   sync.Mutex
	next map[string]int
}

func (g *seqIDs) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next == nil {
		g.next = make(map[string]int)
	}
	g.next[prefix]++
	return fmt.Sprintf("%s-new-%d", prefix, g.next[prefix])
}

// fakeKV is an in-memory KeyValueStore with injectable failures.
type fakeKV struct {
	mu        sync.Mutex
	data      map[string]string
	getErr    error
	setErr    error
	deleteErr error
	// failSetKey, when non-empty, fails Set only for that key.
	failSetKey string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	if f.failSetKey != "" && f.failSetKey == key {
		return errors.New("disk full")
	}
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.data, key)
	return nil
}

func (f *fakeKV) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

func (f *fakeKV) value(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key]
}

// plainHasher stores "salt:password" so tests stay fast.
type plainHasher struct{}

func (plainHasher) GenerateSalt() (string, error) { return "salt", nil }

func (plainHasher) Hash(salt, password string) (string, error) { return salt + ":" + password, nil }

func (plainHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeEmailService struct {
	mu   sync.Mutex
	sent []*domain.WelcomeMessageEmailData
	err  error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

type seqAddresses struct {
	mu  sync.Mutex
	n   int
	err error
}

func (g *seqAddresses) NewAddress() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	g.n++
	return fmt.Sprintf("0x%040x", g.n), nil
}
