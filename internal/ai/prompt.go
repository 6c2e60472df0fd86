package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/hackmate/internal/profiles"
)

//go:embed prompt.md
var promptTemplate string

func buildPrompt(user *profiles.Participant, candidates []*profiles.Participant, maxResults int) (string, error) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal target participant: %w", err)
	}

	candidatesJSON, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{USER_JSON}}", string(userJSON))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES_JSON}}", string(candidatesJSON))
	prompt = strings.ReplaceAll(prompt, "{{MAX_RESULTS}}", strconv.Itoa(maxResults))
	return prompt, nil
}
