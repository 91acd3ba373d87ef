package cli

import (
	"fmt"
	"os"

	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sqdshguy/wirebridge/pkg/bridge"
	"github.com/sqdshguy/wirebridge/pkg/config"
	"github.com/sqdshguy/wirebridge/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	cfgFile     string
	jsonOutput  bool
	flagProfile string
	flagProxy   string
	logLevel    string
	logFormat   string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"

	// cfg and logger are resolved once per invocation in the root
	// PersistentPreRunE and shared by every command.
	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wirebridge",
	Short: "wirebridge performs HTTP requests and WebSocket sessions shaped like real browsers",
	Long: `wirebridge is a command-line client for HTTP and WebSocket endpoints that
presents the request identity of real browsers and HTTP clients: Chrome, Edge,
Safari, Firefox, Opera and OkHttp profiles with their ordered headers.

Cookies persist per named session, so multi-step flows keep their state, and
WebSocket connections are managed with strictly ordered message delivery.

Configuration can be provided via flags, WIREBRIDGE_* environment variables,
or a YAML configuration file (--config or $WIREBRIDGE_CONFIG).`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		resolved, err := config.Resolve(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("profile") {
			resolved.Profile = flagProfile
		}
		if cmd.Flags().Changed("proxy") {
			resolved.Proxy = flagProxy
		}
		if cmd.Flags().Changed("log-level") {
			resolved.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			resolved.LogFormat = logFormat
		}
		if err := resolved.Validate(); err != nil {
			return err
		}

		cfg = resolved
		logger = logging.New(cfg.LoggingConfig())
		return nil
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file path (default: $WIREBRIDGE_CONFIG)")
	pf.BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	pf.StringVar(&flagProfile, "profile", "", "Emulation profile (see 'wirebridge profiles')")
	pf.StringVar(&flagProxy, "proxy", "", "Proxy URL (http, https, socks5, socks5h)")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "Log format (text, json)")
}

// newBridge builds a bridge for one command invocation.
func newBridge() *bridge.Bridge {
	return bridge.New(bridge.Config{
		Logger:    logger,
		QueueSize: cfg.QueueSize,
	})
}
