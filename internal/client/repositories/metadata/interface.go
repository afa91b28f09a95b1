// Package metadata is the vault's key/value persistence collaborator. The
// vault stores three string values through it: the salt, the verification
// blob and the serialized account list.
package metadata

import "context"

// Store is the narrow persistence contract the vault needs.
type Store interface {
	// GetString returns the value for key. ok is false when the key was
	// never set; err is reserved for storage failures.
	GetString(ctx context.Context, key string) (value string, ok bool, err error)
	// SetString inserts or overwrites the value for key.
	SetString(ctx context.Context, key, value string) error
}
