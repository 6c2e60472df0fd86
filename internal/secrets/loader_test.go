package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "key")
	if err := os.WriteFile(file, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	t.Setenv("HACKMATE_TEST_KEY", " from-env ")

	cases := []struct {
		name string
		src  Source
		want string
	}{
		{name: "file", src: Source{File: file, Env: "HACKMATE_TEST_KEY", Value: "inline"}, want: "from-file"},
		{name: "env", src: Source{Env: "HACKMATE_TEST_KEY", Value: "inline"}, want: "from-env"},
		{name: "value", src: Source{Env: "HACKMATE_TEST_MISSING", Value: " inline "}, want: "inline"},
	}

	for _, tc := range cases {
		got, err := Load(tc.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty: %v", err)
	}

	if _, err := Load(Source{Name: "gemini api key"}); !errors.Is(err, ErrNotConfigured) || !strings.Contains(err.Error(), "gemini api key") {
		t.Fatalf("expected ErrNotConfigured with name, got %v", err)
	}

	if _, err := Load(Source{File: empty, Value: "ignored"}); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}

	if _, err := Load(Source{File: filepath.Join(dir, "missing")}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got %v", err)
	}
}
