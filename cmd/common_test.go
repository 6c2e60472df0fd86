package cmd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/ai/ollama"
	"github.com/spigell/hackmate/internal/secrets"
)

func TestNewCompleter(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	ctx := context.Background()
	log := zap.NewNop()

	cases := []struct {
		name    string
		cfg     *AIConfig
		wantNil bool
		wantErr error
	}{
		{name: "disabled", cfg: &AIConfig{Enabled: false, Provider: providerOllama}, wantNil: true},
		{name: "none", cfg: &AIConfig{Enabled: true, Provider: " None "}, wantNil: true},
		{name: "local ai disabled", cfg: &AIConfig{Enabled: true, Provider: providerOllama, DisableLocal: true}, wantNil: true},
		{name: "gemini without key", cfg: &AIConfig{Enabled: true, Provider: providerGemini}, wantNil: true, wantErr: secrets.ErrNotConfigured},
	}

	for _, tc := range cases {
		completer, err := newCompleter(ctx, tc.cfg, log)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
			}
		} else if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if tc.wantNil && completer != nil {
			t.Fatalf("%s: expected no completer, got %T", tc.name, completer)
		}
	}

	if _, err := newCompleter(ctx, &AIConfig{Enabled: true, Provider: "openai"}, log); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
}

func TestNewCompleterOllama(t *testing.T) {
	t.Parallel()

	completer, err := newCompleter(context.Background(), &AIConfig{
		Enabled:  true,
		Provider: "Ollama",
		Ollama:   &OllamaConfig{URL: "http://ollama:11434", Model: "mistral"},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client, ok := completer.(*ollama.Client)
	if !ok {
		t.Fatalf("expected an ollama client, got %T", completer)
	}
	if client.APIURL != "http://ollama:11434" || client.Model() != "mistral" {
		t.Fatalf("unexpected client %s %s", client.APIURL, client.Model())
	}
}

func TestNewMatcherFallsBackToNone(t *testing.T) {
	t.Parallel()

	m := newMatcher(context.Background(), &AIConfig{Enabled: true, Provider: "openai"}, zap.NewNop(), nil)
	if m.Provider() != providerNone {
		t.Fatalf("expected matcher without provider, got %s", m.Provider())
	}
}

func TestRedactedHidesAPIKey(t *testing.T) {
	t.Parallel()

	cfg := &Config{AI: &AIConfig{Gemini: &GeminiConfig{APIKey: "secret", Model: "m"}}}
	r := redacted(cfg)

	if r.AI.Gemini.APIKey != "***" {
		t.Fatalf("expected redacted key, got %q", r.AI.Gemini.APIKey)
	}
	if cfg.AI.Gemini.APIKey != "secret" {
		t.Fatal("original config must not change")
	}
}

func TestLabelID(t *testing.T) {
	t.Parallel()

	if got := labelID("p-1 Ada / go,react"); got != "p-1" {
		t.Fatalf("unexpected id %q", got)
	}
}

func TestNewMetricsUsesConfig(t *testing.T) {
	t.Parallel()

	m := newMetrics(&MetricsConfig{Enabled: true, Namespace: "hm", Buckets: []float64{1, 30}})
	m.ObserveMatch("ai", 2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, line := range []string{
		`hm_matching_auto_matches_total{outcome="ai"} 1`,
		`hm_matching_auto_match_duration_seconds_bucket{outcome="ai",le="30"} 1`,
	} {
		if !strings.Contains(body, line) {
			t.Fatalf("expected %q in scrape:\n%s", line, body)
		}
	}

	disabled := newMetrics(&MetricsConfig{Namespace: "off"})
	disabled.ObserveMatch("ai", 1)

	rec = httptest.NewRecorder()
	disabled.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if strings.Contains(rec.Body.String(), `off_matching_auto_matches_total{`) {
		t.Fatalf("expected disabled metrics to drop observations")
	}
}
