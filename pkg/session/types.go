package session

import (
	"fmt"
	"strings"
)

const (
	// InternalAccountID is the reserved account id of the depot service
	// account. Tokens that decode to this id are structurally trusted and
	// never validated against the store.
	InternalAccountID uint64 = 0

	// InternalAccountName is the fixed display name of the service account.
	InternalAccountName = "DEPOT"
)

// Provider identifies the identity provider a session token was derived from.
type Provider uint8

const (
	ProviderGitHub Provider = iota
	ProviderGitLab
	ProviderBitbucket
	ProviderOIDC
)

func (p Provider) String() string {
	switch p {
	case ProviderGitHub:
		return "GitHub"
	case ProviderGitLab:
		return "GitLab"
	case ProviderBitbucket:
		return "Bitbucket"
	case ProviderOIDC:
		return "OIDC"
	default:
		return fmt.Sprintf("Provider(%d)", uint8(p))
	}
}

// ParseProvider maps a provider name to its enum value. Matching is
// case-insensitive. An unknown name is an internal inconsistency: the set of
// supported providers is closed and validated at the codec boundary.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(name) {
	case "github":
		return ProviderGitHub, nil
	case "gitlab":
		return ProviderGitLab, nil
	case "bitbucket":
		return ProviderBitbucket, nil
	case "oidc":
		return ProviderOIDC, nil
	default:
		return 0, fmt.Errorf("unknown oauth provider %q: %w", name, ErrSystem)
	}
}

// FeatureFlags is the per-session privilege bitset. It is carried, not
// interpreted, by this package.
type FeatureFlags uint32

const (
	FlagAdmin FeatureFlags = 1 << iota
	FlagBuildWorker
	FlagEarlyAccess
)

// Has reports whether all bits of flag are set.
func (f FeatureFlags) Has(flag FeatureFlags) bool {
	return f&flag == flag
}

// Session is the resolved, request-scoped identity produced by the resolver.
// It lives for the duration of a request plus whatever time it spends in the
// session cache; it is never persisted to the store.
type Session struct {
	ID         uint64       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email,omitempty"`
	Token      string       `json:"token"`
	Flags      FeatureFlags `json:"flags"`
	OAuthToken string       `json:"oauth_token,omitempty"`
}

// AccessTokenPayload is the pre-encoding binary form of a token. It is built
// by the OAuth session issuer, immediately encoded by the codec, and never
// stored unencoded. The toarray encoding keeps the wire form compact and
// positional.
type AccessTokenPayload struct {
	_ struct{} `cbor:",toarray"`

	AccountID uint64
	ExternID  string
	Token     []byte
	Provider  Provider
}

// Account is the persisted profile owned by the authoritative store.
type Account struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AccountToken is a persisted long-lived access token record. The store is
// expected to hold at most one per account; this package validates that
// expectation rather than assuming it.
type AccountToken struct {
	AccountID uint64 `json:"account_id"`
	Token     string `json:"token"`
}
