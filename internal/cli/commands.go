package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/16bitOni/finance-brifer-agent/internal/config"
	"github.com/16bitOni/finance-brifer-agent/internal/display"
	"github.com/16bitOni/finance-brifer-agent/internal/workflow"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "finbrief",
		Short: "FinBrief - voice-ready portfolio briefings",
		Long: `FinBrief answers natural-language questions about your portfolio:
holdings and allocations, risk exposure, earnings surprises, market prices
and news, composed into replies that read well aloud.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}
			if cfg.Debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveMode(cfg)
		},
	}

	rootCmd.AddCommand(newAskCmd(cfg))
	rootCmd.AddCommand(newSeedCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}

// newAskCmd creates the ask command.
func newAskCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [QUESTION]",
		Short: "Ask one question and print the briefing",
		Long: `Ask a single question about your portfolio.
Example: finbrief ask "What's my risk exposure in Asia tech stocks?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if voice, _ := cmd.Flags().GetBool("voice"); voice {
				cfg.VoiceEnabled = true
			}
			question := strings.Join(args, " ")
			return runAskCommand(cfg, question)
		},
	}
	cmd.Flags().Bool("voice", false, "Synthesize the reply to audio as well")
	return cmd
}

// newSeedCmd creates the seed command.
func newSeedCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [PORTFOLIO_JSON]",
		Short: "Load a portfolio document into the local store",
		Long: `Load a portfolio JSON file into the local document store so queries
can retrieve it. Example: finbrief seed ./portfolio.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeedCommand(cfg, args[0])
		},
	}
	return cmd
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("FinBrief v1.0.0")
			fmt.Println("Voice-ready portfolio briefing assistant")
		},
	}
}

// newConfigCmd creates the config command.
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cfg)
		},
	})

	return configCmd
}

// runAskCommand answers a single question.
func runAskCommand(cfg *config.Config, question string) error {
	ctx := context.Background()

	manager, err := workflow.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	result := manager.ProcessQuery(ctx, question)
	fmt.Println(display.RenderResult(result))
	return nil
}

// runSeedCommand loads a portfolio document into the local SQLite store.
func runSeedCommand(cfg *config.Config, path string) error {
	ctx := context.Background()

	count, err := seedPortfolio(ctx, cfg, path)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	fmt.Printf("Stored %d document chunks from %s\n", count, path)
	return nil
}

// showConfig displays the current configuration.
func showConfig(cfg *config.Config) {
	fmt.Println("Current FinBrief Configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Printf("Data Directory:       %s\n", cfg.DataDir)
	fmt.Printf("Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Printf("Portfolio Store:      %s\n", cfg.PortfolioDBPath)
	fmt.Println()
	fmt.Printf("LLM Provider:         %s\n", cfg.LLMProvider)
	fmt.Printf("LLM Model:            %s\n", cfg.LLMModel)
	fmt.Printf("Backend URL:          %s\n", cfg.BackendURL)
	fmt.Println()
	fmt.Printf("History Days:         %d\n", cfg.HistoryDays)
	fmt.Printf("Earnings Periods:     %d\n", cfg.EarningsPeriods)
	fmt.Printf("Fetch Parallelism:    %d\n", cfg.FetchParallelism)
	fmt.Printf("Fetch Timeout:        %s\n", cfg.FetchTimeout)
	fmt.Println()
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Printf("Result Cache TTL:     %s\n", cfg.ResultCacheTTL)
	fmt.Printf("Voice Enabled:        %t\n", cfg.VoiceEnabled)
	fmt.Printf("Debug Mode:           %t\n", cfg.Debug)
	fmt.Println()

	fmt.Println("API Configuration:")
	fmt.Println("─────────────────────")
	printKeyStatus("LLM API", cfg.OpenAIAPIKey != "" || cfg.DeepSeekAPIKey != "")
	printKeyStatus("Finnhub API", cfg.FinnhubAPIKey != "")
	printKeyStatus("Marketaux API", cfg.MarketauxAPIKey != "")
	printKeyStatus("Google Speech API", cfg.GoogleAPIKey != "")
	printKeyStatus("Pinecone", cfg.PineconeAPIKey != "" && cfg.PineconeHost != "")
}

func printKeyStatus(name string, configured bool) {
	status := "not configured"
	if configured {
		status = "configured"
	}
	fmt.Printf("%-21s %s\n", name+":", status)
}

// validateConfig validates the configuration and dependencies.
func validateConfig(cfg *config.Config) error {
	fmt.Println("Validating FinBrief configuration...")

	fmt.Print("Checking directories... ")
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Println("failed")
		return fmt.Errorf("directory validation failed: %w", err)
	}
	fmt.Println("ok")

	fmt.Print("Checking LLM settings... ")
	if err := cfg.Validate(); err != nil {
		fmt.Println("failed")
		return err
	}
	fmt.Println("ok")

	var warnings []string
	if cfg.FinnhubAPIKey == "" {
		warnings = append(warnings, "Finnhub API key not configured: earnings, metadata and fallback news are unavailable")
	}
	if cfg.MarketauxAPIKey == "" {
		warnings = append(warnings, "Marketaux API key not configured: news falls back to Finnhub only")
	}
	if cfg.VoiceEnabled && cfg.GoogleAPIKey == "" {
		warnings = append(warnings, "voice enabled but Google API key missing: replies stay text-only")
	}

	if len(warnings) == 0 {
		fmt.Println("Configuration validation completed successfully.")
	} else {
		fmt.Printf("Configuration valid with %d warnings:\n", len(warnings))
		for _, warning := range warnings {
			fmt.Printf("  - %s\n", warning)
		}
	}
	return nil
}

// runInteractiveMode starts the interactive question loop.
func runInteractiveMode(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	manager, err := workflow.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	fmt.Println(display.Banner())
	fmt.Println()

	for {
		question, err := PromptForQuestion()
		if err != nil {
			return err
		}
		if question == "" {
			fmt.Println("Goodbye!")
			return nil
		}

		result := manager.ProcessQuery(ctx, question)
		fmt.Println(display.RenderResult(result))
	}
}
