package session

import "errors"

// Resolution failures fall into four kinds. Callers distinguish them with
// errors.Is; everything this package returns wraps exactly one of these
// sentinels.
var (
	// ErrNoCredential means the request carried no Authorization header at
	// all. The middleware treats this as anonymous, not as a rejection.
	ErrNoCredential = errors.New("no credential supplied")

	// ErrMalformedHeader means an Authorization header was present but did
	// not parse as "Bearer <token>".
	ErrMalformedHeader = errors.New("malformed authorization header")

	// ErrUnauthorized means a credential was presented but is invalid,
	// revoked, or otherwise not resolvable to an account.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSystem means an internal invariant was violated: an unknown
	// provider name, or more than one access token on file for an account.
	ErrSystem = errors.New("internal inconsistency")

	// ErrStorage means the authoritative store was unavailable or a query
	// failed. Kept distinct from ErrUnauthorized so operators can alert on
	// store trouble without paging on bad credentials.
	ErrStorage = errors.New("backing store failure")
)
