package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store is the profile store collaborator the matching engine reads from.
type Store interface {
	List(ctx context.Context) (*Participants, error)
}

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// documentKey is the optional wrapper key of a participants document.
const documentKey = "participants"

// FileStore reads participants from a JSON or YAML document on every call,
// so edits to the file are picked up without a restart.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: strings.TrimSpace(path)}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) List(_ context.Context) (*Participants, error) {
	if s.path == "" {
		return nil, fmt.Errorf("participants file is not configured")
	}
	return LoadFile(s.path)
}

// MemoryStore serves a fixed participant list.
type MemoryStore struct {
	participants *Participants
}

func NewMemoryStore(items ...*Participant) *MemoryStore {
	return &MemoryStore{participants: &Participants{Items: items}}
}

func (s *MemoryStore) List(_ context.Context) (*Participants, error) {
	return s.participants.Clone(), nil
}

// FormatFromPath guesses the document format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile reads and decodes a participants document.
func LoadFile(path string) (*Participants, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading participants file %q: %w", path, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return &Participants{}, nil
	}

	participants, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("decoding participants file %q: %w", path, err)
	}

	return participants, nil
}

// Decode parses a participants document. The document must be a list of
// records or a mapping holding such a list under the "participants" key.
func Decode(data []byte, format Format) (*Participants, error) {
	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, invalidInput("malformed yaml: %s", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, invalidInput("malformed json: %s", err)
		}
	}

	if doc, ok := raw.(map[string]any); ok {
		raw = doc[documentKey]
	}

	records, ok := raw.([]any)
	if !ok {
		return nil, invalidInput("participant collection must be a list, got %T", raw)
	}

	return DecodeRecords(records)
}

// DecodeRecords converts loosely typed records into validated participants.
// Comma separated strings are accepted for list fields.
func DecodeRecords(records []any) (*Participants, error) {
	var items []*Participant

	cfg := &mapstructure.DecoderConfig{
		Result:           &items,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(records); err != nil {
		return nil, invalidInput("%s", err)
	}

	for _, p := range items {
		if p == nil {
			continue
		}
		ApplyDefaults(p)
	}

	if err := ValidateAll(items); err != nil {
		return nil, err
	}

	return &Participants{Items: items}, nil
}

// ApplyDefaults trims list fields, folds the expertise tier to its canonical
// spelling and fills in DefaultExpertise when it is missing.
func ApplyDefaults(p *Participant) {
	p.ID = strings.TrimSpace(p.ID)
	p.Skills = trimList(p.Skills)
	p.TechStack = trimList(p.TechStack)

	trimmed := strings.TrimSpace(string(p.Expertise))
	if trimmed == "" {
		p.Expertise = DefaultExpertise
		return
	}
	if known, ok := ParseExpertise(trimmed); ok {
		p.Expertise = known
		return
	}
	p.Expertise = Expertise(trimmed)
}

func trimList(values []string) []string {
	if values == nil {
		return nil
	}
	trimmed := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			trimmed = append(trimmed, v)
		}
	}
	return trimmed
}
