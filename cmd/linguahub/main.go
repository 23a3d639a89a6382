// Command linguahub runs the language learning platform server and a
// small client-side utility for checking a running instance.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"linguahub/internal/app"
	"linguahub/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "linguahub",
	Short:        "Language learning platform server",
	SilenceUsage: true,
}

// serveFlags holds the flags for the serve command.
type serveFlags struct {
	configPath string
	host       string
	port       int
	logLevel   string
	logFormat  string
}

var serveFlagVals serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the TCP server in the foreground",
	Long: `Run the server in the foreground until SIGTERM/SIGINT.

Configuration precedence: flags > config file > LINGUAHUB_* environment
variables > built-in defaults.`,
	Example: `  # Defaults (0.0.0.0:8080)
  linguahub serve

  # Custom port with a config file
  linguahub serve --config linguahub.yaml --port 9000

  # JSON logs for ingestion
  linguahub serve --log-format json`,
	RunE: runServe,
}

func init() {
	f := &serveFlagVals

	serveCmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to YAML config file")
	serveCmd.Flags().StringVar(&f.host, "host", "", "Bind address (overrides config)")
	serveCmd.Flags().IntVarP(&f.port, "port", "p", 0, "TCP port (overrides config)")
	serveCmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&f.logFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	f := &serveFlagVals

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Logging.Format = f.logFormat
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	a.Logger().Info("shutting down", "signal", s.String())

	a.Stop()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
