package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// DefaultService is the keychain service the analyzer key is filed under.
const DefaultService = "landing-analyzer"

// runner executes a CLI and returns its stdout. stdin is fed when non-empty.
type runner func(stdin string, name string, args ...string) ([]byte, error)

func execRunner(stdin string, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return out, fmt.Errorf("%s: %w", strings.TrimSpace(string(exitErr.Stderr)), err)
	}
	return out, err
}

// KeychainStore keeps secrets in the OS keyring: the macOS Keychain through
// `security`, or the freedesktop Secret Service through `secret-tool` on
// Linux. Lookups on other systems, or without the CLI, find nothing.
type KeychainStore struct {
	Service string
	goos    string
	run     runner
}

// NewKeychainStore creates a KeychainStore for DefaultService.
func NewKeychainStore() *KeychainStore {
	return &KeychainStore{Service: DefaultService, goos: runtime.GOOS, run: execRunner}
}

// Set stores value under key, replacing any previous value.
func (k *KeychainStore) Set(key string, value []byte) error {
	var err error
	switch k.goos {
	case "darwin":
		_, err = k.run("", "security", "add-generic-password",
			"-a", key, "-s", k.Service, "-w", string(value), "-U")
	case "linux":
		_, err = k.run(string(value), "secret-tool", "store",
			"--label", k.Service+" "+key, "service", k.Service, "account", key)
	default:
		return fmt.Errorf("keychain: unsupported on %s", k.goos)
	}
	if err != nil {
		return fmt.Errorf("keychain set %s: %w", key, err)
	}
	return nil
}

// Get returns the stored value, or nil when the key is absent or the keyring
// cannot be reached.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	var out []byte
	var err error
	switch k.goos {
	case "darwin":
		out, err = k.run("", "security", "find-generic-password", "-a", key, "-s", k.Service, "-w")
	case "linux":
		out, err = k.run("", "secret-tool", "lookup", "service", k.Service, "account", key)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, nil
	}
	v := strings.TrimSpace(string(out))
	if v == "" {
		return nil, nil
	}
	return []byte(v), nil
}

// Delete removes key. Deleting an absent key is not an error.
func (k *KeychainStore) Delete(key string) error {
	switch k.goos {
	case "darwin":
		k.run("", "security", "delete-generic-password", "-a", key, "-s", k.Service)
	case "linux":
		k.run("", "secret-tool", "clear", "service", k.Service, "account", key)
	}
	return nil
}
