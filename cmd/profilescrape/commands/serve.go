package commands

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smithp17/AutoDialer/internal/output"
	"github.com/smithp17/AutoDialer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scrapes over HTTP",
	Long: `Serve starts an HTTP server with these routes:

  POST /scrapes           run one scrape and return its status
  GET  /scrapes/download  download the latest artifact
  GET  /scrapes/log       read the latest run's progress log
  GET  /healthz           liveness probe

Only one scrape runs at a time; a second POST while one is active gets
409 Conflict.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", "", "listen address (default 127.0.0.1:8080)")
	flags.String("dir", "", "directory for artifacts and run logs (default tmp/scrapes)")
	flags.Duration("drain", 5*time.Second, "how long to wait for in-flight requests on shutdown")

	_ = viper.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("server.dir", flags.Lookup("dir"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	drain, _ := cmd.Flags().GetDuration("drain")
	srv := server.New(cfg.Server.Dir, format, server.RunnerFunc(cfg))
	return srv.ListenAndServe(ctx, cfg.Server.Addr, drain)
}
