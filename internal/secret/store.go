// Package secret resolves sensitive values such as the analyzer API key.
package secret

// SecretStore is a key/value store for secrets. Get returns nil and no error
// for a missing key, so stores can be chained.
type SecretStore interface {
	Set(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
}
