package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wiiutool/internal/log"
)

// Version is set by main.go.
var Version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "wiiutool",
	Short: "Decrypt and extract Wii U title packages",
	Long: `wiiutool decrypts Wii U title containers (TMD/ticket/content) and
extracts their FST file tree.

It needs a title directory holding title.tmd, title.tik (or cetk), and the
numbered content containers (*.app), as laid out by a title downloader.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.EnableDebugLogging()
		}
	},
}

// globalReporter is signalled by the SIGINT/SIGTERM handler below so a
// running decrypt/extract can cancel cleanly instead of leaving a
// half-written .dec or extracted file behind.
var globalReporter *Reporter

// Execute runs the CLI and returns the process exit code.
func Execute(version string) int {
	Version = version
	rootCmd.Version = version

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if globalReporter != nil {
			globalReporter.Cancel()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
}
