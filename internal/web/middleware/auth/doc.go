// Package auth authenticates api requests with HTTP basic auth against the member table
// and guards routes with forum permissions.
package auth
