// Package auth implements the per-session Google credential cache.
//
// Every Workspace tool follows the same contract: try the cached credential,
// fall back to a completed authorization result from the request context,
// otherwise report a pending-authorization status; and when a Google API call
// comes back 401 or 403, clear the cache so the next invocation restarts the
// flow instead of retrying a dead token.
package auth
