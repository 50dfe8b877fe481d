package session

import "github.com/pkg/errors"

// Storage keys owned by the session Manager. No other keys are written.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// ErrKeyNotFound is returned by a Store when the key has no value.
var ErrKeyNotFound = errors.New("key not found")

// Store is the durable key-value store the tokens are mirrored into. It
// survives process restarts and is the component's only persistence
// boundary. The Manager writes through to the Store before updating its
// in-memory state, so a crash between the two never leaves memory ahead
// of storage.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
