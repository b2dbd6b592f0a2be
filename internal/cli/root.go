package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/befundlink/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "befundlink",
	Short: "befundlink - align clinical events with dated findings",
	Long: `befundlink aligns the events of an extracted events report with
independently dated findings ("Befunde").

For every event it selects the findings whose date interval overlaps the
event's interval, retrieves labeled excerpts from those findings and merges
overlapping excerpts into a compact evidence block per event.

It does not interpret the text; it only lines documents up in time.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("befundlink v0.3.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.befundlink/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.befundlink")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// BEFUNDLINK_RETRIEVAL_MODEL overrides retrieval.model, and so on
	viper.SetEnvPrefix("BEFUNDLINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env variables can reach it
func setDefaults(cfg *model.Config) {
	viper.SetDefault("retrieval.provider", cfg.Retrieval.Provider)
	viper.SetDefault("retrieval.model", cfg.Retrieval.Model)
	viper.SetDefault("retrieval.api_key", cfg.Retrieval.APIKey)
	viper.SetDefault("retrieval.base_url", cfg.Retrieval.BaseURL)
	viper.SetDefault("retrieval.timeout", cfg.Retrieval.Timeout)
	viper.SetDefault("retrieval.max_tokens", cfg.Retrieval.MaxTokens)
	viper.SetDefault("retrieval.window", cfg.Retrieval.Window)
	viper.SetDefault("retrieval.http_proxy", cfg.Retrieval.HTTPProxy)
	viper.SetDefault("retrieval.https_proxy", cfg.Retrieval.HTTPSProxy)
	viper.SetDefault("retrieval.no_proxy", cfg.Retrieval.NoProxy)
	viper.SetDefault("alignment.clamp_months", cfg.Alignment.ClampMonths)
	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.dir", cfg.Cache.Dir)
	viper.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)
	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	viper.SetDefault("rate_limiting.requests_per_second", cfg.RateLimiting.RequestsPerSecond)
	viper.SetDefault("rate_limiting.burst_size", cfg.RateLimiting.BurstSize)
	viper.SetDefault("output.verbose", cfg.Output.Verbose)
	viper.SetDefault("output.write_json", cfg.Output.WriteJSON)
}

// loadConfig resolves the effective configuration from defaults, config
// file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Alignment.ClampMonths < 1 {
		return nil, fmt.Errorf("alignment.clamp_months must be at least 1, got %d", cfg.Alignment.ClampMonths)
	}

	switch strings.ToLower(cfg.Retrieval.Provider) {
	case "openai":
		if cfg.Retrieval.APIKey == "" {
			cfg.Retrieval.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.Retrieval.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.Retrieval.APIKey == "" {
			cfg.Retrieval.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.Retrieval.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		if cfg.Retrieval.BaseURL == "" {
			if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
				cfg.Retrieval.BaseURL = strings.TrimSuffix(base, "/") + "/v1"
			}
		}
	}

	return cfg, nil
}
