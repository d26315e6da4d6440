package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/sierra/config"
	"github.com/s0up4200/sierra/filter"
	"github.com/s0up4200/sierra/sierra"
	"github.com/s0up4200/sierra/tokenstore"
)

var (
	cfgFile      string
	logLevel     string
	cfg          *config.Config
	logger       zerolog.Logger
	sierraClient *sierra.Client
	filters      *filter.Manager
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sierra",
	Short: "Query the Sierra ILS REST API",
	Long: `sierra is a CLI for the Sierra ILS REST API. It authenticates with the
client-credentials grant, caches the access token between runs and prints
API responses as JSON or YAML.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(testCmd)
}

// initializeApp loads the configuration and builds the Sierra client
func initializeApp(cmd *cobra.Command, args []string) error {
	// A .env file is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger = setupLogger(cfg.Logging)

	store, err := newTokenStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to create token store: %w", err)
	}

	sierraClient, err = sierra.NewClient(cfg.ClientConfig(), logger,
		sierra.WithTokenStore(store),
		sierra.WithPersistErrorHandler(func(e *sierra.PersistError) {
			logger.Debug().Err(e).Str("store", cfg.TokenStore.Type).Msg("Token kept in memory only")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create Sierra client: %w", err)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filters); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	logger.Debug().
		Str("endpoint", cfg.Sierra.Endpoint).
		Str("token_store", cfg.TokenStore.Type).
		Msg("Sierra client ready")

	return nil
}

// newTokenStore builds the configured token cache backend
func newTokenStore(cfg *config.Config) (tokenstore.Store, error) {
	switch cfg.TokenStore.Type {
	case config.StoreMemory:
		return tokenstore.NewMemoryStore(), nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.TokenStore.Redis.Addr,
			Password: cfg.TokenStore.Redis.Password,
			DB:       cfg.TokenStore.Redis.DB,
		})
		return tokenstore.NewRedisStore(client, cfg.TokenStore.Redis.Key)
	default:
		return tokenstore.NewFileStore(cfg.Sierra.TokenFile)
	}
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colored only on a terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:     "test",
	Short:   "Test connection to Sierra",
	Long:    `Obtain an access token and fetch info/token to confirm the credentials work.`,
	PreRunE: initializeApp,
	RunE:    runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing connection to Sierra at %s...\n", cfg.Sierra.Endpoint)

	ctx := commandContext(cmd)
	info, err := sierraClient.Query(ctx, "info/token", nil, false)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	fmt.Fprintln(out, "✓ Connection successful!")

	if m, ok := info.(map[string]any); ok {
		if ts, ok := m["expiresIn"]; ok {
			fmt.Fprintf(out, "- Token expires in: %vs\n", ts)
		}
		if roles, ok := m["roles"].([]any); ok {
			fmt.Fprintf(out, "- Roles: %d\n", len(roles))
			for _, r := range roles {
				if role, ok := r.(map[string]any); ok {
					fmt.Fprintf(out, "  • %v\n", role["name"])
				}
			}
		}
	}

	return nil
}

// commandContext returns the command's context, or Background when run outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
