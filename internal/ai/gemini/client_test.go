package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
)

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	config *genai.GenerateContentConfig
	text   string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	for _, content := range contents {
		for _, part := range content.Parts {
			f.text += part.Text
		}
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{nil, {Content: nil}, {Content: content}},
	}
}

func TestGenerateContentJoinsParts(t *testing.T) {
	t.Parallel()

	fake := &fakeModels{resp: textResponse(" [{\"id\":\"a\"} ", "", "]")}
	g := newGenerator(fake, "")

	out, err := g.GenerateContent(context.Background(), "  match us  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "[{\"id\":\"a\"}\n]" {
		t.Fatalf("unexpected output %q", out)
	}
	if fake.model != defaultModel {
		t.Fatalf("expected default model, got %q", fake.model)
	}
	if fake.text != "match us" {
		t.Fatalf("expected trimmed prompt, got %q", fake.text)
	}
	if fake.config == nil || fake.config.ResponseMIMEType != "application/json" {
		t.Fatalf("expected JSON response config, got %+v", fake.config)
	}
	if g.Provider() != "gemini" || g.Model() != defaultModel {
		t.Fatalf("unexpected description %s/%s", g.Provider(), g.Model())
	}
}

func TestGenerateContentErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		fake   *fakeModels
		prompt string
		want   string
	}{
		{name: "empty prompt", fake: &fakeModels{}, prompt: " ", want: "prompt must not be empty"},
		{name: "api error", fake: &fakeModels{err: errors.New("quota exceeded")}, prompt: "p", want: "quota exceeded"},
		{name: "nil response", fake: &fakeModels{}, prompt: "p", want: "no response"},
		{name: "empty text", fake: &fakeModels{resp: textResponse("  ")}, prompt: "p", want: "empty response"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := newGenerator(tc.fake, "gemini-test").GenerateContent(context.Background(), tc.prompt)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewGenerator(context.Background(), "  ", ""); err == nil {
		t.Fatal("expected missing key error")
	}
}

func TestNilGenerator(t *testing.T) {
	t.Parallel()

	var g *Generator
	if _, err := g.GenerateContent(context.Background(), "p"); err == nil {
		t.Fatal("expected error for nil generator")
	}
	if g.Model() != "" {
		t.Fatal("expected empty model")
	}
}
