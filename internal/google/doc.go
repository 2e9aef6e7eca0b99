// Package google provides OAuth2 credential handling for Google APIs.
//
// The central type is Credential: an access token together with the refresh
// material (refresh token, client credentials, token endpoint, scopes) needed
// to renew it. Credentials are produced by completed authorization flows,
// cached per conversation session, and consumed by the Drive, Docs and
// Calendar clients.
package google
