package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/ai"
	"github.com/spigell/hackmate/internal/ai/gemini"
	"github.com/spigell/hackmate/internal/ai/ollama"
	"github.com/spigell/hackmate/internal/engine"
	"github.com/spigell/hackmate/internal/logger"
	"github.com/spigell/hackmate/internal/metrics"
	"github.com/spigell/hackmate/internal/profiles"
	"github.com/spigell/hackmate/internal/roles"
	"github.com/spigell/hackmate/internal/secrets"
)

const (
	providerNone   = "none"
	providerGemini = "gemini"
	providerOllama = "ollama"
)

// recorder collects the metric hooks the engine and the matcher accept.
type recorder interface {
	ai.Recorder
	engine.Recorder
}

// bootstrap builds the logger and the config shared by every command.
func bootstrap() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

func redacted(config *Config) Config {
	c := *config
	if c.AI != nil && c.AI.Gemini != nil && c.AI.Gemini.APIKey != "" {
		aiCfg := *c.AI
		g := *aiCfg.Gemini
		g.APIKey = "***"
		aiCfg.Gemini = &g
		c.AI = &aiCfg
	}
	return c
}

func newEngine(ctx context.Context, config *Config, logger *zap.Logger, rec recorder) (*engine.Engine, error) {
	assigner, err := roles.NewAssigner(config.Roles)
	if err != nil {
		return nil, fmt.Errorf("building role table: %w", err)
	}

	matcher := newMatcher(ctx, config.AI, logger, rec)

	opts := []engine.Option{}
	if m := config.Matching; m != nil {
		opts = append(opts,
			engine.WithThreshold(m.Threshold),
			engine.WithMaxResults(m.MaxResults),
			engine.WithSearchLimit(m.SearchLimit),
			engine.WithPoolLimit(m.PoolLimit),
		)
	}
	if rec != nil {
		opts = append(opts, engine.WithRecorder(rec))
	}

	store := profiles.NewFileStore(config.ProfilesFile)
	logger.Debug("using participants file", zap.String("path", store.Path()))

	return engine.New(store, assigner, matcher, logger, opts...)
}

func newMatcher(ctx context.Context, cfg *AIConfig, logger *zap.Logger, rec recorder) *ai.Matcher {
	opts := []ai.Option{}
	if rec != nil {
		opts = append(opts, ai.WithRecorder(rec))
	}
	if cfg == nil {
		return ai.NewMatcher(nil, logger, opts...)
	}

	opts = append(opts,
		ai.WithTimeout(cfg.Timeout),
		ai.WithMaxCandidates(cfg.MaxCandidates),
		ai.WithMaxResults(cfg.MaxResults),
		ai.WithMaxLogLength(cfg.MaxLogLength),
	)

	completer, err := newCompleter(ctx, cfg, logger)
	if err != nil {
		logger.Warn("ai provider unavailable, auto-match will use the heuristic fallback", zap.Error(err))
		completer = nil
	}

	return ai.NewMatcher(completer, logger, opts...)
}

// newCompleter returns nil without an error when the provider is disabled.
func newCompleter(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Completer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if !cfg.Enabled || provider == "" || provider == providerNone {
		return nil, nil
	}

	switch provider {
	case providerGemini:
		gcfg := cfg.Gemini
		if gcfg == nil {
			gcfg = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  gcfg.APIKeyFile,
			Env:   "GEMINI_API_KEY",
			Value: gcfg.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or HACKMATE_GEMINI_API_KEY_FILE)", err)
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model)
		if err != nil {
			return nil, err
		}
		log.Info("ai provider configured", logger.CommonFields(providerGemini, generator.Model())...)
		return generator, nil

	case providerOllama:
		if cfg.DisableLocal {
			log.Info("local ai disabled", zap.String("hint", "unset DISABLE_LOCAL_AI to call ollama"))
			return nil, nil
		}

		ocfg := cfg.Ollama
		if ocfg == nil {
			ocfg = &OllamaConfig{}
		}

		client := ollama.New(log, ocfg.URL, ocfg.Model)
		if cfg.Timeout > 0 {
			client.HTTPClient.Timeout = cfg.Timeout
		}
		log.Info("ai provider configured", logger.CommonFields(providerOllama, client.Model())...)
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// newMetrics builds the Prometheus manager. Without a metrics block every
// observation is recorded under the default namespace.
func newMetrics(cfg *MetricsConfig) *metrics.Manager {
	if cfg == nil {
		return metrics.NewManager()
	}

	return metrics.NewManager(
		metrics.WithMetricsEnabled(cfg.Enabled),
		metrics.WithNamespace(cfg.Namespace),
		metrics.WithHistogramBuckets(cfg.Buckets),
	)
}

func printJSON(w io.Writer, v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(pretty))
	return err
}

// labelID extracts the participant id from a picker label.
func labelID(label string) string {
	return strings.SplitN(label, " ", 2)[0]
}
