package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/debtrack/agent/internal/config"
	"github.com/debtrack/agent/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	cfgFile    string
	flagServer string
	flagPort   int
	flagCert   string
	flagKey    string
	flagAPI    string
	dryRun     bool
	debug      bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "debtrack-agent",
	Short: "DebTrack Agent",
	Long: `DebTrack Agent - Debian package inventory tracker.

Collects the installed, upgradable and uninstalled packages of this host and
reports them to a DebTrack server, either from a full apt catalog scan or
incrementally from the dpkg Pre-Install-Pkgs hook.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Scan the apt catalog and report the package state",
	RunE: func(cmd *cobra.Command, args []string) error {
		upgradableOnly, _ := cmd.Flags().GetBool("upgradable")
		return runReport(upgradableOnly)
	},
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Parse a dpkg Pre-Install-Pkgs stream from stdin and report the delta",
	Long: `Parse the package changes dpkg reports on stdin via its Pre-Install-Pkgs
hook (protocol versions 2 and 3) and send them as a partial update, without a
full catalog scan.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := readLines(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read hook input: %w", err)
		}
		return runHook(lines)
	},
}

var selfUpdateCmd = &cobra.Command{
	Use:   "self-update",
	Short: "Replace this binary with the version published by the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSelfUpdate(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("DebTrack Agent v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/debtrack/agent.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "DebTrack server DNS name, required unless --dry-run is set")
	rootCmd.PersistentFlags().IntVarP(&flagPort, "port", "p", 0, "port the DebTrack server is listening on (default 443)")
	rootCmd.PersistentFlags().StringVarP(&flagCert, "cert", "c", "", "path to the client TLS certificate; may also contain the private key")
	rootCmd.PersistentFlags().StringVarP(&flagKey, "key", "k", "", "path to the client TLS private key, requires --cert")
	rootCmd.PersistentFlags().StringVarP(&flagAPI, "api", "a", "", "version of the server API to use (default v1)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "print the report to stdout instead of sending it")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "set logging level to debug")

	reportCmd.Flags().BoolP("upgradable", "u", false, "report only the upgradable packages (partial update)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(selfUpdateCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the config, applies flag overrides and initializes logging.
func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if flagServer != "" {
		cfg.Server = flagServer
	}
	if flagPort != 0 {
		cfg.Port = flagPort
	}
	if flagCert != "" {
		cfg.CertFile = flagCert
	}
	if flagKey != "" {
		cfg.KeyFile = flagKey
	}
	if flagAPI != "" {
		cfg.APIVersion = flagAPI
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	logging.Init(cfg.LogFormat, cfg.LogLevel, nil)
	cfg.Validate()

	if cmd == versionCmd {
		return nil
	}
	if cfg.KeyFile != "" && cfg.CertFile == "" {
		return fmt.Errorf("--cert is required when --key is set")
	}
	if cfg.Server == "" {
		if cmd == selfUpdateCmd {
			return fmt.Errorf("--server is required for self-update")
		}
		if !dryRun {
			return fmt.Errorf("--server is required unless --dry-run is set")
		}
	}
	return nil
}

// readLines slurps the hook stream; dpkg hands it over in one shot before
// waiting for the hook to exit.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
