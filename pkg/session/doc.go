// Package session resolves opaque bearer tokens into verified identities for the depot API.
//
// # Overview
//
// Every authenticated request carries "Authorization: Bearer <token>". This
// package decides, per request, whether that token is a still-cached session,
// a long-lived personal access token that must be checked against the
// authoritative store, or nothing it can vouch for.
//
// # Resolution order
//
// The Resolver drives a fixed pipeline on each token:
//
//  1. Session cache lookup (redis). A hit is returned unchanged.
//  2. Structural classification. Tokens without the access-token shape are
//     rejected; there is nothing to validate them against.
//  3. Structural decode of the access-token payload (no cryptography).
//  4. Internal service account shortcut: the reserved account id is trusted
//     structurally and never round-trips to the store.
//  5. Store validation: the presented token must equal the single token on
//     file for the account, ignoring trailing '=' padding. A match fills in
//     the account profile and repopulates the cache.
//
// # Token format
//
// Both personal access tokens and OAuth-issued session tokens are a
// CBOR-encoded payload (account id, external user id, raw provider token,
// provider) in padded standard base64. Access tokens additionally carry the
// "dpt_" prefix; the prefix is the entire basis of classification.
//
// # Error taxonomy
//
// All failures wrap one of four sentinels: ErrNoCredential /
// ErrMalformedHeader (no usable credential), ErrUnauthorized (credential
// present but invalid or revoked), ErrSystem (internal invariant violated),
// ErrStorage (backing store unavailable). Storage trouble is deliberately
// not folded into ErrUnauthorized.
//
// # Related Packages
//
//   - pkg/middleware: extracts the bearer token and invokes the Resolver
//   - pkg/oauth: fetches provider profiles consumed by IssueOAuthSession
package session
