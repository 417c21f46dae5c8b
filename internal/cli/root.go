package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time with -ldflags "-X .../internal/cli.version=..."
var version = "v0.1.0"

const envPrefix = "CLINVAR_TSV"

var (
	cfgFile string
	verbose int
	quiet   int

	// configErr holds a config file read failure until a command loads the config
	configErr error
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clinvar-tsv",
	Short: "Convert ClinVar XML releases to TSV",
	Long: `clinvar-tsv streams a ClinVar full release (XML, optionally gzip or zstd
compressed) and writes its variants as tab-separated files, split by genome
assembly (GRCh37, GRCh38) and variant shape (small, structural).`,
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
		fmt.Fprintf(cmd.OutOrStdout(), "clinvar-tsv %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.clinvar-tsv/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "more log output (repeatable)")
	rootCmd.PersistentFlags().CountVarP(&quiet, "quiet", "q", "less log output (repeatable)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and ENV variables
func initConfig() {
	// a missing .env is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".clinvar-tsv"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CLINVAR_TSV_*, e.g.
	// CLINVAR_TSV_INPUT_QUEUE_DEPTH for input.queue_depth
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("read config: %w", err)
		}
		return
	}
	if verbose > 0 {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
