package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aportsknife/aportsknife/internal/common/config"
	"github.com/aportsknife/aportsknife/internal/common/logger"
	"github.com/aportsknife/aportsknife/internal/common/output"
)

var (
	verbose    bool
	quiet      bool
	noColor    bool
	logFile    bool
	aportsFlag string
)

var rootCmd = &cobra.Command{
	Use:   "aportsknife",
	Short: "Swiss army knife for bulk aports operations",
	Long: `aportsknife selects packages of an Alpine aports tree by pkgver,
dependency or git changes and updates, checksums or builds them in bulk.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor {
			output.NoColor()
		}
		if logFile {
			path, err := logger.Default().EnableFileLogging()
			if err != nil {
				logger.Warn("file logging disabled: %v", err)
			} else {
				logger.Debug("logging to %s", path)
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&logFile, "log-file", false, "Also write a log file to the state directory")
	rootCmd.PersistentFlags().StringVarP(&aportsFlag, "aports", "C", "", "Path to the aports tree (overrides the config)")
}

// loadConfig returns the configuration, or exits when aportsknife has not
// been initialized yet.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrConfigNotFound) {
		fmt.Println("Please run aportsknife init first")
		exit(0)
	}
	if err != nil {
		fatal("loading config: %v", err)
	}
	return cfg
}

// aportsRoot returns the validated aports tree, honoring --aports
func aportsRoot(cfg *config.Config) (string, error) {
	if aportsFlag != "" {
		cfg.General.AportsPath = aportsFlag
	}
	return cfg.AportsPath()
}

// fatal logs an error and exits with status 1
func fatal(format string, args ...interface{}) {
	logger.Error(format, args...)
	exit(1)
}

// exit flushes the log file before terminating
func exit(code int) {
	logger.Close()
	os.Exit(code)
}

func main() {
	err := rootCmd.Execute()
	logger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
