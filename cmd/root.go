package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/hackmate/internal/ai"
	"github.com/spigell/hackmate/internal/ai/ollama"
	"github.com/spigell/hackmate/internal/engine"
	"github.com/spigell/hackmate/internal/graph"
	"github.com/spigell/hackmate/internal/matching"
	"github.com/spigell/hackmate/internal/roles"
)

const (
	app = "hackmate"
)

type Config struct {
	ProfilesFile string          `mapstructure:"profiles-file"`
	Matching     *MatchingConfig `mapstructure:"matching"`
	Roles        roles.Table     `mapstructure:"roles"`
	AI           *AIConfig       `mapstructure:"ai"`
	Server       *ServerConfig   `mapstructure:"server"`
	Metrics      *MetricsConfig  `mapstructure:"metrics"`
}

type MatchingConfig struct {
	Threshold   int `mapstructure:"threshold"`
	MaxResults  int `mapstructure:"max-results"`
	SearchLimit int `mapstructure:"search-limit"`
	PoolLimit   int `mapstructure:"pool-limit"`
}

type AIConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Provider      string        `mapstructure:"provider"`
	DisableLocal  bool          `mapstructure:"disable-local"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxCandidates int           `mapstructure:"max-candidates"`
	MaxResults    int           `mapstructure:"max-results"`
	MaxLogLength  int           `mapstructure:"max-log-length"`
	Gemini        *GeminiConfig `mapstructure:"gemini"`
	Ollama        *OllamaConfig `mapstructure:"ollama"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type OllamaConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

type MetricsConfig struct {
	Enabled   bool      `mapstructure:"enabled"`
	Namespace string    `mapstructure:"namespace"`
	Buckets   []float64 `mapstructure:"buckets"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hackmate matches hackathon participants into teams and suggests roles",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults()

	viper.SetEnvPrefix(strings.ToUpper(app))
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	for key, env := range map[string]string{
		"ai.gemini.api-key-file": "HACKMATE_GEMINI_API_KEY_FILE",
		"ai.ollama.url":          "OLLAMA_API_URL",
		"ai.ollama.model":        "OLLAMA_MODEL",
		"ai.disable-local":       "DISABLE_LOCAL_AI",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hackmate.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("participants", "p", "", "participants file (JSON or YAML)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("profiles-file", rootCmd.PersistentFlags().Lookup("participants"))
}

func setDefaults() {
	viper.SetDefault("profiles-file", "participants.yaml")

	viper.SetDefault("matching.threshold", graph.DefaultThreshold)
	viper.SetDefault("matching.max-results", matching.DefaultMaxResults)
	viper.SetDefault("matching.search-limit", matching.DefaultSearchLimit)
	viper.SetDefault("matching.pool-limit", engine.DefaultPoolLimit)

	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.provider", "none")
	viper.SetDefault("ai.disable-local", false)
	viper.SetDefault("ai.timeout", ai.DefaultTimeout)
	viper.SetDefault("ai.max-candidates", ai.DefaultMaxCandidates)
	viper.SetDefault("ai.max-results", ai.DefaultMaxResults)
	viper.SetDefault("ai.max-log-length", 200)
	viper.SetDefault("ai.gemini.api-key", "")
	viper.SetDefault("ai.gemini.api-key-file", "")
	viper.SetDefault("ai.gemini.model", "")
	viper.SetDefault("ai.ollama.url", ollama.DefaultURL)
	viper.SetDefault("ai.ollama.model", ollama.DefaultModel)

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.allowed-origins", []string{"*"})

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.namespace", app)
}

func initConfig() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// An explicitly given config must parse, the default one may be missing.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
