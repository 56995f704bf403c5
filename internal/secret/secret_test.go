package secret_test

import (
	"testing"

	"landing/internal/secret"
)

type mapStore map[string][]byte

func (m mapStore) Set(k string, v []byte) error { m[k] = v; return nil }
func (m mapStore) Get(k string) ([]byte, error) { return m[k], nil }
func (m mapStore) Delete(k string) error { delete(m, k); return nil }

func TestEnvStore_KeyMapping(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", " abc ")
	v, err := secret.NewEnvStore("").Get("gemini-api-key")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "abc" {
		t.Fatalf("expected trimmed value, got %q", v)
	}

	t.Setenv("LANDING_X_Y", "1")
	if v, _ := secret.NewEnvStore("LANDING_").Get("x.y"); string(v) != "1" {
		t.Fatalf("prefix lookup failed: %q", v)
	}
	if v, _ := secret.NewEnvStore("").Get("missing-key-xyz"); v != nil {
		t.Fatalf("expected nil for missing key, got %q", v)
	}
}

func TestChain_FirstNonEmptyWins(t *testing.T) {
	first := mapStore{}
	second := mapStore{"k": []byte("from-second")}
	c := secret.Chain{first, second}

	v, _ := c.Get("k")
	if string(v) != "from-second" {
		t.Fatalf("expected fallback to second store, got %q", v)
	}

	if err := c.Set("k", []byte("override")); err != nil {
		t.Fatal(err)
	}
	v, _ = c.Get("k")
	if string(v) != "override" {
		t.Fatalf("expected first store to win, got %q", v)
	}
}
