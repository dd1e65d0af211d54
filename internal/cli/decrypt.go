package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	wiiuerrors "wiiutool/internal/errors"
	"wiiutool/internal/title"
	"wiiutool/internal/util"
)

func init() {
	decryptCmd.SilenceErrors = true
	decryptCmd.SilenceUsage = true
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <game_dir>",
	Short: "Decrypt a title's content containers",
	Long: `Decrypt every numbered content container (*.app) in a title directory
into "<content_id>.app.dec", using the title's ticket and TMD (or a Title
Key supplied directly with --title-key).

Examples:
  wiiutool decrypt /titles/0005000010101C00
  wiiutool decrypt /titles/0005000010101C00 --delete
  wiiutool decrypt /titles/0005000010101C00 --output ./decrypted
  wiiutool decrypt /titles/0005000010101C00 --title-key D7B00402659BA2ABD2CB0DB27FA2B656`,
	Args: cobra.ExactArgs(1),
	RunE: runDecrypt,
}

var (
	decTitleKeyHex string
	decDelete      bool
	decOutput      string
	decQuiet       bool
)

func init() {
	rootCmd.AddCommand(decryptCmd)
	decryptCmd.Flags().StringVar(&decTitleKeyHex, "title-key", "", "Plain Title Key, 32 hex characters (bypasses the ticket)")
	decryptCmd.Flags().BoolVar(&decDelete, "delete", false, "Remove source .app containers after a successful decrypt")
	decryptCmd.Flags().StringVarP(&decOutput, "output", "o", "", "Destination directory for .app.dec files (default: next to the source .app)")
	decryptCmd.Flags().BoolVarP(&decQuiet, "quiet", "q", false, "Suppress progress output")
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("title directory not found: %s", dir)
	}

	var rawKey []byte
	if decTitleKeyHex != "" {
		rawKey, err = ParseTitleKeyHex(decTitleKeyHex)
		if err != nil {
			return err
		}
	} else if !ticketPresent(dir) {
		rawKey, err = ReadTitleKeyInteractive()
		if err != nil {
			return fmt.Errorf("title key input: %w", err)
		}
	}

	reporter := NewReporter(decQuiet)
	globalReporter = reporter

	report, err := title.Decrypt(title.DecryptOptions{
		OperationContext: title.OperationContext{
			Dir:            dir,
			Reporter:       reporter,
			CheckCancelled: reporter.IsCancelled,
		},
		RawTitleKey: rawKey,
		Delete:      decDelete,
		OutputDir:   decOutput,
	})
	reporter.Wait()

	if err != nil {
		if wiiuerrors.IsCancelled(err) {
			reporter.PrintError("cancelled")
			return err
		}
		reporter.PrintError("%v", err)
		return err
	}

	var total int64
	for _, o := range report.Outcomes {
		total += o.BytesWritten
	}
	if report.MismatchCount() > 0 {
		reporter.PrintSuccess("Decryption completed with %d hash mismatch(es) (%s written)", report.MismatchCount(), util.Sizeify(total))
	} else {
		reporter.PrintSuccess("Decryption completed: %s written", util.Sizeify(total))
	}
	if !report.Succeeded() {
		return fmt.Errorf("no content was decrypted")
	}
	return nil
}

func ticketPresent(dir string) bool {
	for _, name := range []string{"title.tik", "cetk"} {
		if _, err := os.Stat(dir + string(os.PathSeparator) + name); err == nil {
			return true
		}
	}
	return false
}
