// Package provider integrates the third-party identity providers the app
// signs in with. Each provider turns an access token obtained on-device
// into a normalized Profile; the exchange service never talks to a
// provider API directly.
package provider

import "context"

// Profile is the normalized identity extracted from a provider's
// profile endpoint. ID is always set on a successful fetch; the other
// fields are provider-dependent and may be empty.
type Profile struct {
	ID       string
	Email    string
	Nickname string
	ImageURL string
}

// Provider abstracts one identity provider.
//
// FetchProfile owns the provider's response contract: upstream failures
// (transport errors, non-2xx) surface as UNAUTHENTICATED, and a response
// missing that provider's required fields surfaces as the provider's own
// malformed-upstream code. UID derives the stable application uid for a
// profile, e.g. "kakao:12345".
type Provider interface {
	Name() string
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
	UID(p *Profile) string
}
