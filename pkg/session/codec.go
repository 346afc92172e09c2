package session

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// AccessTokenPrefix identifies depot personal access tokens. OAuth-derived
// session tokens use the same payload encoding but carry no prefix, which is
// what lets IsAccessToken separate the two shapes without a full decode.
const AccessTokenPrefix = "dpt_"

// Personal access tokens use padded standard base64; revocation comparison
// elsewhere must therefore ignore trailing '=' on either side.
var tokenEncoding = base64.StdEncoding

// EncodeAccessToken serializes a payload into the prefixed bearer string used
// for personal access tokens.
func EncodeAccessToken(payload *AccessTokenPayload) (string, error) {
	data, err := cbor.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode access token: %w", err)
	}
	return AccessTokenPrefix + tokenEncoding.EncodeToString(data), nil
}

// EncodeSessionToken serializes a payload into the unprefixed bearer string
// handed out by the OAuth session issuer.
func EncodeSessionToken(payload *AccessTokenPayload) (string, error) {
	data, err := cbor.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode session token: %w", err)
	}
	return tokenEncoding.EncodeToString(data), nil
}

// IsAccessToken is the structural classification run on every cache miss. It
// is a shape check only: prefix plus base64 alphabet. It must stay cheap and
// must not attempt a payload decode.
func IsAccessToken(token string) bool {
	if !strings.HasPrefix(token, AccessTokenPrefix) {
		return false
	}
	encoded := token[len(AccessTokenPrefix):]
	if encoded == "" {
		return false
	}
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '+' || c == '/' || c == '=':
		default:
			return false
		}
	}
	return true
}

// DecodeAccessToken parses a prefixed access token back into its payload.
// This is structural parsing only; no cryptographic verification happens
// here. Callers map failures to an authorization error.
func DecodeAccessToken(token string) (*AccessTokenPayload, error) {
	encoded := strings.TrimPrefix(token, AccessTokenPrefix)
	data, err := tokenEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}
	var payload AccessTokenPayload
	if err := cbor.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode access token payload: %w", err)
	}
	return &payload, nil
}

// TokensEqual compares two bearer token strings ignoring trailing '='
// padding on either side. Used for revocation checks against the stored
// token value.
func TokensEqual(a, b string) bool {
	return strings.TrimRight(a, "=") == strings.TrimRight(b, "=")
}
