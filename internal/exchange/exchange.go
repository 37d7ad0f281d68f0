// Package exchange converts provider access tokens into application session
// credentials. One generic routine serves every provider; the
// provider-specific parts (profile endpoint, required fields, uid shape)
// live behind the provider.Provider interface.
package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/howsu-app/howsu-backend/internal/callable"
	"github.com/howsu-app/howsu-backend/internal/credential"
	"github.com/howsu-app/howsu-backend/internal/directory"
	"github.com/howsu-app/howsu-backend/internal/log"
	"github.com/howsu-app/howsu-backend/internal/provider"
)

// Service performs the token exchange. It is stateless; concurrent
// exchanges share nothing but the injected clients.
type Service struct {
	directory directory.Service
	minter    credential.Minter
}

// New builds an exchange service from its collaborators.
func New(dir directory.Service, minter credential.Minter) *Service {
	return &Service{directory: dir, minter: minter}
}

// Exchange validates the access token with p, resolves or provisions the
// application identity, and mints a session credential for it.
//
// When the provider profile carries an email (Kakao), the directory is the
// source of truth: an existing record found by email is reused as-is, and
// only a "no such user" miss provisions a new record under the synthetic
// uid. Profiles without an email (Naver) mint directly against the
// synthetic uid. Nothing here retries; every failure is terminal for the
// invocation.
func (s *Service) Exchange(ctx context.Context, p provider.Provider, accessToken string) (string, error) {
	if accessToken == "" {
		return "", callable.Errorf(callable.CodeInvalidArgument, "%s access token is required", p.Name())
	}

	profile, err := p.FetchProfile(ctx, accessToken)
	if err != nil {
		return "", err
	}

	uid := p.UID(profile)
	if profile.Email != "" {
		uid, err = s.resolveByEmail(ctx, profile, uid)
		if err != nil {
			return "", err
		}
	}

	token, err := s.minter.Mint(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("minting session credential for %s: %w", uid, err)
	}

	log.LogInfoWithFields("exchange", "Issued session credential", map[string]any{
		"provider": p.Name(),
		"uid":      uid,
	})
	return token, nil
}

func (s *Service) resolveByEmail(ctx context.Context, profile *provider.Profile, syntheticUID string) (string, error) {
	user, err := s.directory.GetUserByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		// Existing identity wins; profile fields are not synced onto it.
		return user.UID, nil
	case errors.Is(err, directory.ErrUserNotFound):
		created, createErr := s.directory.CreateUser(ctx, directory.CreateUserParams{
			UID:         syntheticUID,
			Email:       profile.Email,
			DisplayName: profile.Nickname,
			PhotoURL:    profile.ImageURL,
		})
		if createErr != nil {
			return "", fmt.Errorf("provisioning user %s: %w", syntheticUID, createErr)
		}
		return created.UID, nil
	default:
		// Any other directory failure propagates unchanged.
		return "", err
	}
}
