// Package middleware provides decorators for ports.StateStore.
//
// NewEncryptionMiddleware seals snapshots with AES-256-GCM before they reach
// the underlying store, with fallback keys for rotation.
package middleware
