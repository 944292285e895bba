package domain

import (
	"context"
	"slices"
	"strings"
	"time"
)

// DefaultUserRole is the role label given to newly registered users.
const DefaultUserRole = "Community Member"

// User represents a registered community member.
// swagger:model User
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Location       string    `json:"location,omitempty"`
	JoinedDate     time.Time `json:"joinedDate"`
	EventsAttended int       `json:"eventsAttended"`
	Connections    int       `json:"connections"`
	Interests      []string  `json:"interests,omitempty"`
	Twitter        string    `json:"twitter,omitempty"`
	LinkedIn       string    `json:"linkedin,omitempty"`
	Website        string    `json:"website,omitempty"`
	Avatar         string    `json:"avatar,omitempty"`
}

// NewUser returns a new User with registration defaults. ID is set by the identity store.
func NewUser(name, email string, joined time.Time) *User {
	return &User{
		Name:       name,
		Email:      email,
		Role:       DefaultUserRole,
		JoinedDate: joined,
	}
}

// Clone returns a deep copy so callers never share slices with the store.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Interests = slices.Clone(u.Interests)
	return &c
}

// UserPatch carries a partial profile update. Nil fields are left unchanged.
type UserPatch struct {
	Name           *string   `json:"name"`
	Email          *string   `json:"email"`
	Role           *string   `json:"role"`
	Bio            *string   `json:"bio"`
	Location       *string   `json:"location"`
	EventsAttended *int      `json:"eventsAttended"`
	Connections    *int      `json:"connections"`
	Interests      *[]string `json:"interests"`
	Twitter        *string   `json:"twitter"`
	LinkedIn       *string   `json:"linkedin"`
	Website        *string   `json:"website"`
	Avatar         *string   `json:"avatar"`
}

// Validate returns error messages for fields that would break user invariants.
func (p UserPatch) Validate() []string {
	var errs []string
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if p.Email != nil && strings.TrimSpace(*p.Email) == "" {
		errs = append(errs, "email must not be empty")
	}
	if p.EventsAttended != nil && *p.EventsAttended < 0 {
		errs = append(errs, "eventsAttended must not be negative")
	}
	if p.Connections != nil && *p.Connections < 0 {
		errs = append(errs, "connections must not be negative")
	}
	return errs
}

// Apply merges the patch into u in place.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		u.Email = strings.TrimSpace(*p.Email)
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.EventsAttended != nil {
		u.EventsAttended = *p.EventsAttended
	}
	if p.Connections != nil {
		u.Connections = *p.Connections
	}
	if p.Interests != nil {
		u.Interests = slices.Clone(*p.Interests)
	}
	if p.Twitter != nil {
		u.Twitter = *p.Twitter
	}
	if p.LinkedIn != nil {
		u.LinkedIn = *p.LinkedIn
	}
	if p.Website != nil {
		u.Website = *p.Website
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// IdentityStore owns the registered-user catalog and the currently authenticated user.
type IdentityStore interface {
	Register(ctx context.Context, name, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	Logout(ctx context.Context) error
	GetByID(id string) *User
	UpdateProfile(ctx context.Context, patch UserPatch) (*User, error)
	Current() *User
	Users() []*User
	Pending() int
	Subscribe(fn func(current *User)) (unsubscribe func())
}
