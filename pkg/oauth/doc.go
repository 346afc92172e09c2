// Package oauth turns raw identity-provider tokens into minimal user profiles.
//
// The session issuer needs three things about a provider token's owner: the
// provider-assigned id, a username, and (optionally) an email. Provider
// implementations fetch exactly that — GitHubProvider against the GitHub
// REST API, OIDCProvider against any OpenID Connect issuer's userinfo
// endpoint. The web flow that obtains the token in the first place is the
// HTTP layer's concern.
package oauth
