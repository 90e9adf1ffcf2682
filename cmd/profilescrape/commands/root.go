// Package commands implements the CLI commands for profilescrape.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smithp17/AutoDialer/internal/config"
	"github.com/smithp17/AutoDialer/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "profilescrape",
	Short: "Scrape public profile fields with a logged-in browser session",
	Long: `Profilescrape logs in once with the configured account, visits each
profile in turn and records its name, headline and about text.

Credentials come from EMAIL and PASSWORD (or PROFILESCRAPE_EMAIL and
PROFILESCRAPE_PASSWORD), read from the environment or a .env file.

Examples:
  # Scrape the default profile list into scraped_profiles.json
  profilescrape scrape

  # Scrape two profiles into YAML with fixed settle delays
  profilescrape scrape --usernames janedoe,johndoe -f yaml -o profiles.yaml \
      --settle-mode fixed

  # Serve scrapes over HTTP
  profilescrape serve --addr 127.0.0.1:8080`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// initErr holds a failure from initConfig, which cannot return one itself.
var initErr error

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.profilescrape.yaml or ./.profilescrape.yaml)")
	flags.String("env-file", ".env", "dotenv file with EMAIL and PASSWORD")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress progress output")
	flags.Bool("log-json", false, "emit logs as JSON")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("env_file", flags.Lookup("env-file"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_json", flags.Lookup("log-json"))
}

func initConfig() {
	initErr = nil
	if err := config.LoadDotEnv(viper.GetString("env_file")); err != nil {
		initErr = err
		return
	}

	cfgFile := viper.GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".profilescrape")
		viper.SetConfigType("yaml")
	}

	config.BindEnv(viper.GetViper())

	// The default config file is optional; an explicit or broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			initErr = fmt.Errorf("%w: read config: %v", config.ErrConfiguration, err)
		}
	}
}

// setup runs before every command.
func setup(cmd *cobra.Command, args []string) error {
	if initErr != nil {
		return initErr
	}
	logger.Init(logger.Options{
		Debug:  viper.GetBool("debug"),
		Quiet:  viper.GetBool("quiet"),
		JSON:   viper.GetBool("log_json"),
		Output: os.Stderr,
	})
	return nil
}

// Execute runs the root command and prints any error it returns.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logError("%v", err)
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, verr.Remediation())
		}
	}
	return err
}

// loadConfig resolves the run configuration from flags, environment and file.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// progressWriter is where console progress goes, or nil in quiet mode.
func progressWriter() io.Writer {
	if viper.GetBool("quiet") {
		return nil
	}
	return os.Stdout
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
