// Package testutil provides hand-rolled fakes for the exchange
// collaborators. They are stateful on purpose: the idempotency tests need
// a directory whose second lookup sees the first call's create.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/howsu-app/howsu-backend/internal/directory"
	"github.com/howsu-app/howsu-backend/internal/provider"
)

// FakeDirectory is an in-memory directory.Service keyed by email.
type FakeDirectory struct {
	mu          sync.Mutex
	usersByMail map[string]*directory.User

	// Error overrides, returned verbatim when set.
	LookupErr error
	CreateErr error

	// Call counters for assertions.
	LookupCalls int
	CreateCalls int
}

var _ directory.Service = (*FakeDirectory)(nil)

func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{usersByMail: make(map[string]*directory.User)}
}

// Seed installs an existing user record.
func (f *FakeDirectory) Seed(user directory.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usersByMail[user.Email] = &user
}

func (f *FakeDirectory) GetUserByEmail(_ context.Context, email string) (*directory.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.LookupCalls++
	if f.LookupErr != nil {
		return nil, f.LookupErr
	}
	user, ok := f.usersByMail[email]
	if !ok {
		return nil, directory.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *FakeDirectory) CreateUser(_ context.Context, params directory.CreateUserParams) (*directory.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CreateCalls++
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	user := &directory.User{
		UID:         params.UID,
		Email:       params.Email,
		DisplayName: params.DisplayName,
		PhotoURL:    params.PhotoURL,
	}
	f.usersByMail[params.Email] = user
	copied := *user
	return &copied, nil
}

// FakeMinter records the uids it minted for and returns a deterministic
// token per call.
type FakeMinter struct {
	mu         sync.Mutex
	Err        error
	MintedUIDs []string
}

func (f *FakeMinter) Mint(_ context.Context, uid string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	f.MintedUIDs = append(f.MintedUIDs, uid)
	return fmt.Sprintf("custom-token-%s-%d", uid, len(f.MintedUIDs)), nil
}

// StaticProvider returns a fixed profile or error without any network.
type StaticProvider struct {
	ProviderName string
	Profile      *provider.Profile
	FetchErr     error
	FetchCalls   int
}

var _ provider.Provider = (*StaticProvider)(nil)

func (p *StaticProvider) Name() string {
	return p.ProviderName
}

func (p *StaticProvider) FetchProfile(_ context.Context, _ string) (*provider.Profile, error) {
	p.FetchCalls++
	if p.FetchErr != nil {
		return nil, p.FetchErr
	}
	copied := *p.Profile
	return &copied, nil
}

func (p *StaticProvider) UID(profile *provider.Profile) string {
	return p.ProviderName + ":" + profile.ID
}
