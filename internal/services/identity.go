package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"communityhub/internal/domain"
)

// DefaultSeedUsers is the number of synthetic users the catalog starts with.
const DefaultSeedUsers = 20

// IdentityOptions configures NewIdentityStore. Storage, Clock and IDs are required.
type IdentityOptions struct {
	Storage domain.KeyValueStore
	Clock   domain.Clock
	IDs     domain.IDGenerator
	// Hasher stores and verifies credentials. When nil, login matches by email only.
	Hasher domain.PasswordHasher
	// Emails, when set, receives a welcome message after registration.
	Emails    domain.EmailService
	Latency   time.Duration
	SeedUsers int
	Logger    *slog.Logger
}

type credential struct {
	salt string
	hash string
}

type identityStore struct {
	storage domain.KeyValueStore
	clock   domain.Clock
	ids     domain.IDGenerator
	hasher  domain.PasswordHasher
	emails  domain.EmailService
	latency time.Duration
	logger  *slog.Logger

	mu          sync.Mutex
	users       []*domain.User
	credentials map[string]credential
	current     *domain.User

	pending inflight
	subs    subscribers[*domain.User]
}

// NewIdentityStore seeds the user catalog and restores the authenticated user from
// storage. A stored user that cannot be decoded is discarded. Mutations run to
// completion once started; cancelling their ctx does not abort them.
func NewIdentityStore(ctx context.Context, opts IdentityOptions) domain.IdentityStore {
	s := &identityStore{
		storage:     opts.Storage,
		clock:       opts.Clock,
		ids:         opts.IDs,
		hasher:      opts.Hasher,
		emails:      opts.Emails,
		latency:     opts.Latency,
		logger:      discardIfNil(opts.Logger),
		credentials: make(map[string]credential),
	}
	s.users = seedUsers(opts.SeedUsers, s.clock.Now())
	s.restore(ctx)
	return s
}

func seedUsers(n int, now time.Time) []*domain.User {
	users := make([]*domain.User, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, &domain.User{
			ID:         fmt.Sprintf("user-%d", i),
			Name:       fmt.Sprintf("User %d", i),
			Email:      fmt.Sprintf("user%d@gmail.com", i),
			JoinedDate: now,
		})
	}
	return users
}

func (s *identityStore) restore(ctx context.Context) {
	raw, err := s.storage.Get(ctx, domain.StorageKeyUser)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return
	}
	if err != nil {
		s.logger.WarnContext(ctx, "restore user: storage unavailable", "err", err)
		return
	}
	u, err := decodeUser(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "restore user: discarding stored value", "err", err)
		if err := s.storage.Delete(ctx, domain.StorageKeyUser); err != nil {
			s.logger.ErrorContext(ctx, "restore user: delete corrupt entry", "err", err)
		}
		return
	}
	// The catalog is not persisted, so the stored profile replaces the seeded
	// entry with the same id, or is re-added when registered in an earlier run.
	// GetByID, Login and email uniqueness then agree with the session.
	if i := slices.IndexFunc(s.users, func(x *domain.User) bool { return x.ID == u.ID }); i >= 0 {
		s.users[i] = u.Clone()
	} else if s.findByEmailLocked(u.Email) == nil {
		s.users = append(s.users, u.Clone())
	}
	s.current = u
}

func decodeUser(raw string) (*domain.User, error) {
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: user has no id", domain.ErrStorageCorrupt)
	}
	return &u, nil
}

func (s *identityStore) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	defer s.pending.begin()()
	ctx = context.WithoutCancel(ctx)

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrInvalidInput)
	}
	if err := s.clock.Sleep(ctx, s.latency); err != nil {
		return nil, err
	}

	var cred *credential
	if s.hasher != nil {
		salt, err := s.hasher.GenerateSalt()
		if err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		hash, err := s.hasher.Hash(salt, password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		cred = &credential{salt: salt, hash: hash}
	}

	s.mu.Lock()
	if s.findByEmailLocked(email) != nil {
		s.mu.Unlock()
		return nil, domain.ErrDuplicateEmail
	}
	u := domain.NewUser(name, email, s.clock.Now())
	u.ID = s.ids.NewID("user")
	if err := s.persistLocked(ctx, u); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.users = append(s.users, u)
	if cred != nil {
		s.credentials[u.ID] = *cred
	}
	s.current = u.Clone()
	out, seq := u.Clone(), s.subs.stamp()
	s.mu.Unlock()

	s.subs.publish(seq, out.Clone())
	s.sendWelcome(ctx, out)
	return out, nil
}

func (s *identityStore) sendWelcome(ctx context.Context, u *domain.User) {
	if s.emails == nil {
		return
	}
	data := &domain.WelcomeMessageEmailData{Email: u.Email, Name: u.Name, UserID: u.ID}
	if err := s.emails.SendWelcomeMessage(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "welcome email failed", "user_id", u.ID, "err", err)
	}
}

func (s *identityStore) Login(ctx context.Context, email, password string) (*domain.User, error) {
	defer s.pending.begin()()
	ctx = context.WithoutCancel(ctx)

	if err := s.clock.Sleep(ctx, s.latency); err != nil {
		return nil, err
	}

	s.mu.Lock()
	found := s.findByEmailLocked(email)
	if found == nil {
		s.mu.Unlock()
		return nil, domain.ErrUserNotFound
	}
	userID := found.ID
	cred, hasCred := s.credentials[userID]
	s.mu.Unlock()

	if hasCred && s.hasher != nil {
		if err := s.hasher.Compare(cred.hash, cred.salt, password); err != nil {
			return nil, domain.ErrInvalidCredentials
		}
	}

	s.mu.Lock()
	u := s.findByIDLocked(userID)
	if u == nil {
		s.mu.Unlock()
		return nil, domain.ErrUserNotFound
	}
	if err := s.persistLocked(ctx, u); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.current = u.Clone()
	out, seq := u.Clone(), s.subs.stamp()
	s.mu.Unlock()

	s.subs.publish(seq, out.Clone())
	return out, nil
}

// Logout clears the authenticated user. The in-memory session is cleared even
// when removing the persisted entry fails; that failure is returned.
func (s *identityStore) Logout(ctx context.Context) error {
	defer s.pending.begin()()
	ctx = context.WithoutCancel(ctx)

	if err := s.clock.Sleep(ctx, s.latency/2); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = nil
	err := s.storage.Delete(ctx, domain.StorageKeyUser)
	seq := s.subs.stamp()
	s.mu.Unlock()

	s.subs.publish(seq, nil)
	if err != nil {
		return fmt.Errorf("remove stored user: %w", err)
	}
	return nil
}

func (s *identityStore) GetByID(id string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findByIDLocked(id).Clone()
}

func (s *identityStore) UpdateProfile(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	defer s.pending.begin()()
	ctx = context.WithoutCancel(ctx)

	if errs := patch.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}
	if err := s.clock.Sleep(ctx, s.latency); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, domain.ErrNotAuthenticated
	}
	updated := s.current.Clone()
	patch.Apply(updated)
	if updated.Email != s.current.Email {
		if other := s.findByEmailLocked(updated.Email); other != nil && other.ID != updated.ID {
			s.mu.Unlock()
			return nil, domain.ErrDuplicateEmail
		}
	}
	if err := s.persistLocked(ctx, updated); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.current = updated
	for i, u := range s.users {
		if u.ID == updated.ID {
			s.users[i] = updated.Clone()
			break
		}
	}
	out, seq := updated.Clone(), s.subs.stamp()
	s.mu.Unlock()

	s.subs.publish(seq, out.Clone())
	return out, nil
}

func (s *identityStore) Current() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

func (s *identityStore) Users() []*domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.User, len(s.users))
	for i, u := range s.users {
		out[i] = u.Clone()
	}
	return out
}

func (s *identityStore) Pending() int {
	return s.pending.count()
}

func (s *identityStore) Subscribe(fn func(current *domain.User)) func() {
	return s.subs.add(fn)
}

func (s *identityStore) persistLocked(ctx context.Context, u *domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Set(ctx, domain.StorageKeyUser, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

// findByEmailLocked matches case-sensitively.
func (s *identityStore) findByEmailLocked(email string) *domain.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *identityStore) findByIDLocked(id string) *domain.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}
