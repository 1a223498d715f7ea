// Command pubsite serves, exports and scaffolds pubsite content sites.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eringen/pubsite"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
	devMode    bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "pubsite",
	Short: "pubsite - blog posts and a research library served from files",
	Long: `pubsite reads Markdown posts with YAML frontmatter and a JSON research
catalog, and serves them as a JSON API, RSS feed and sitemap. It can also
export the site to static files or index posts into SQLite.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if devMode {
			config = zap.NewDevelopmentConfig()
		}
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pubsite version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pubsite %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "site.yaml", "site configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "development mode: show drafts, human-readable logs")

	rootCmd.AddCommand(serveCmd, buildCmd, indexCmd, newCmd, postCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the site configuration; --dev forces development mode.
func loadConfig() (pubsite.SiteConfig, error) {
	cfg, err := pubsite.LoadConfig(configPath)
	if err != nil {
		return pubsite.SiteConfig{}, err
	}
	if devMode {
		cfg.Development = true
	}
	return cfg, nil
}

func newApp() (*pubsite.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return pubsite.New(cfg, pubsite.ViewFuncs{}, pubsite.WithLogger(logger)), nil
}
