package secret

import (
	"errors"
	"strings"
	"testing"
)

type call struct {
	stdin string
	argv  string
}

func fakeKeychain(goos string, out string, fail bool) (*KeychainStore, *[]call) {
	var calls []call
	k := &KeychainStore{Service: DefaultService, goos: goos}
	k.run = func(stdin, name string, args ...string) ([]byte, error) {
		calls = append(calls, call{stdin: stdin, argv: name + " " + strings.Join(args, " ")})
		if fail {
			return nil, errors.New("exit status 44")
		}
		return []byte(out), nil
	}
	return k, &calls
}

func TestKeychain_Darwin(t *testing.T) {
	k, calls := fakeKeychain("darwin", "sk-123\n", false)
	v, err := k.Get("gemini-api-key")
	if err != nil || string(v) != "sk-123" {
		t.Fatalf("got %q, %v", v, err)
	}
	if err := k.Set("gemini-api-key", []byte("sk-456")); err != nil {
		t.Fatal(err)
	}
	want := "security add-generic-password -a gemini-api-key -s landing-analyzer -w sk-456 -U"
	if got := (*calls)[1].argv; got != want {
		t.Errorf("set argv = %q, want %q", got, want)
	}
}

func TestKeychain_LinuxPassesSecretOnStdin(t *testing.T) {
	k, calls := fakeKeychain("linux", "", false)
	if err := k.Set("gemini-api-key", []byte("sk-789")); err != nil {
		t.Fatal(err)
	}
	c := (*calls)[0]
	if c.stdin != "sk-789" {
		t.Errorf("stdin = %q", c.stdin)
	}
	if strings.Contains(c.argv, "sk-789") {
		t.Errorf("secret leaked into argv: %q", c.argv)
	}
	if v, _ := k.Get("gemini-api-key"); v != nil {
		t.Errorf("empty lookup should be nil, got %q", v)
	}
}

func TestKeychain_MissingIsNil(t *testing.T) {
	k, _ := fakeKeychain("darwin", "", true)
	v, err := k.Get("nope")
	if err != nil || v != nil {
		t.Fatalf("expected nil, nil; got %q, %v", v, err)
	}

	k, calls := fakeKeychain("windows", "", false)
	if v, _ := k.Get("nope"); v != nil {
		t.Fatal("unsupported OS should find nothing")
	}
	if err := k.Set("nope", []byte("x")); err == nil {
		t.Fatal("expected error on unsupported OS")
	}
	if len(*calls) != 0 {
		t.Fatalf("no command should run, got %v", *calls)
	}
}
