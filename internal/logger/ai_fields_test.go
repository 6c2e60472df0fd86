package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFieldsSkipsBlanks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  []StringField
		keys   []string
		values []string
	}{
		{
			name:   "trims run id",
			input:  []StringField{{Key: " " + FieldRunID + " ", Value: " 7f3c9a "}},
			keys:   []string{FieldRunID},
			values: []string{"7f3c9a"},
		},
		{
			name: "drops empty outcome and key",
			input: []StringField{
				{Key: FieldOutcome, Value: "  "},
				{Key: "", Value: "fallback_parse"},
				{Key: FieldProvider, Value: "ollama"},
			},
			keys:   []string{FieldProvider},
			values: []string{"ollama"},
		},
		{
			name: "nothing given",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fields := StringFields(tt.input...)
			if len(fields) != len(tt.keys) {
				t.Fatalf("expected %d fields, got %d", len(tt.keys), len(fields))
			}
			for i, f := range fields {
				if f.Key != tt.keys[i] || f.String != tt.values[i] {
					t.Fatalf("field %d: expected %s=%s, got %s=%s", i, tt.keys[i], tt.values[i], f.Key, f.String)
				}
			}
		})
	}
}

func TestWithFieldsOnNilLogger(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)

	WithFields(zap.New(core), zap.String(FieldOutcome, "ai")).Info("auto-match finished")
	if got := observed.All()[0].ContextMap()[FieldOutcome]; got != "ai" {
		t.Fatalf("expected outcome ai, got %v", got)
	}

	nop := WithFields(nil, zap.String(FieldOutcome, "fallback_call"))
	if nop == nil {
		t.Fatal("expected a no-op logger")
	}
	nop.Info("auto-match finished")

	same := zap.New(core)
	if WithFields(same) != same {
		t.Fatal("expected the logger back when no fields are given")
	}
}

func TestCommonFieldsForProviders(t *testing.T) {
	t.Parallel()

	fields := CommonFields(" ollama ", "llama2")
	if len(fields) != 2 || fields[0].String != "ollama" || fields[1].Key != FieldModel || fields[1].String != "llama2" {
		t.Fatalf("unexpected fields: %+v", fields)
	}

	// provider "none" has no model
	fields = CommonFields("none", "")
	if len(fields) != 1 || fields[0].Key != FieldProvider {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestWithRun(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)

	WithRun(zap.New(core), "run-1", "gemini", "gemini-2.5-flash").Info("auto-match finished")
	WithRun(zap.New(core), "run-2", "ollama", "").Info("auto-match finished")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0].ContextMap()
	if first[FieldRunID] != "run-1" || first[FieldProvider] != "gemini" || first[FieldModel] != "gemini-2.5-flash" {
		t.Fatalf("unexpected fields: %v", first)
	}

	second := entries[1].ContextMap()
	if second[FieldRunID] != "run-2" || second[FieldProvider] != "ollama" {
		t.Fatalf("unexpected fields: %v", second)
	}
	if _, ok := second[FieldModel]; ok {
		t.Fatalf("expected empty model to be omitted")
	}

	WithRun(nil, "run-3", "none", "").Info("dropped")
}
