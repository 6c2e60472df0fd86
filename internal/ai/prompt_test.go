package ai

import (
	"strings"
	"testing"

	"github.com/spigell/hackmate/internal/profiles"
)

func TestBuildPromptFillsEmbeddedTemplate(t *testing.T) {
	t.Parallel()

	for _, placeholder := range []string{"{{USER_JSON}}", "{{CANDIDATES_JSON}}", "{{MAX_RESULTS}}"} {
		if !strings.Contains(promptTemplate, placeholder) {
			t.Fatalf("embedded template lacks %s", placeholder)
		}
	}

	user := &profiles.Participant{ID: "u", Skills: []string{"go"}}
	candidates := []*profiles.Participant{{ID: "c1", Skills: []string{"react"}}}

	prompt, err := buildPrompt(user, candidates, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(prompt, "{{") {
		t.Fatalf("prompt has unresolved placeholders: %s", prompt)
	}
	if !strings.Contains(prompt, `"id":"u"`) || !strings.Contains(prompt, `"id":"c1"`) {
		t.Fatalf("expected participants in prompt: %s", prompt)
	}
}
