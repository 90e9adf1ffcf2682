package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smithp17/AutoDialer/internal/runner"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Log in and scrape every configured profile",
	Long: `Scrape logs in, visits each username in order and writes every record
to a single file when the run ends. A profile that fails to load is
reported and skipped; the run continues with the next one.`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// Input
	flags.StringSlice("usernames", nil, "profile usernames to scrape (default: built-in list)")
	flags.String("base-url", "", "site base URL")

	// Output
	flags.StringP("output", "o", "", "output file (default scraped_profiles.json)")
	flags.StringP("format", "f", "", "output format: json, jsonl, yaml")
	flags.Bool("summary", true, "print a summary table after the run")

	// Browser
	flags.Bool("headless", true, "run Chrome without a window")
	flags.Bool("stealth", true, "hide common automation fingerprints")
	flags.String("chrome-path", "", "Chrome binary (default: search PATH)")
	flags.String("debug-dir", "", "save a screenshot here when a profile fails to load")

	// Timing
	flags.String("settle-mode", "", "how to wait for pages: poll or fixed")
	flags.Duration("settle-timeout", 0, "upper bound for readiness polling")
	flags.Duration("delay", 0, "pause between profiles (default 3s)")
	flags.Int("about-max-runes", 0, "bound for the last-resort about text (default 500)")

	_ = viper.BindPFlag("usernames", flags.Lookup("usernames"))
	_ = viper.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = viper.BindPFlag("output.path", flags.Lookup("output"))
	_ = viper.BindPFlag("output.format", flags.Lookup("format"))
	_ = viper.BindPFlag("summary", flags.Lookup("summary"))
	_ = viper.BindPFlag("browser.headless", flags.Lookup("headless"))
	_ = viper.BindPFlag("browser.stealth", flags.Lookup("stealth"))
	_ = viper.BindPFlag("browser.chrome_path", flags.Lookup("chrome-path"))
	_ = viper.BindPFlag("browser.debug_dir", flags.Lookup("debug-dir"))
	_ = viper.BindPFlag("settle.mode", flags.Lookup("settle-mode"))
	_ = viper.BindPFlag("settle.timeout", flags.Lookup("settle-timeout"))
	_ = viper.BindPFlag("pacing.delay", flags.Lookup("delay"))
	_ = viper.BindPFlag("about.max_runes", flags.Lookup("about-max-runes"))
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logInfo("Scraping %d profiles into %s", len(cfg.Usernames), cfg.Output.Path)
	rep, err := runner.New(cfg, runner.WithProgress(progressWriter())).Execute(ctx)

	if rep != nil && viper.GetBool("summary") && !viper.GetBool("quiet") {
		runner.WriteSummary(os.Stdout, rep)
	}
	return err
}
