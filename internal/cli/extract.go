package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	wiiuerrors "wiiutool/internal/errors"
	"wiiutool/internal/fst"
	"wiiutool/internal/title"
)

func init() {
	extractCmd.SilenceErrors = true
	extractCmd.SilenceUsage = true
}

var extractCmd = &cobra.Command{
	Use:   "extract <game_dir>",
	Short: "Extract a title's FST file tree from its decrypted contents",
	Long: `Parse the FST stored in the title's first content and reconstruct the
file tree it describes, reading each file's bytes out of the matching
"<content_id>.app.dec" (produced by "wiiutool decrypt" first).

Examples:
  wiiutool extract /titles/0005000010101C00 --output ./out
  wiiutool extract /titles/0005000010101C00 --dump-info
  wiiutool extract /titles/0005000010101C00 --all --full-paths`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var (
	extOutput    string
	extNoExtract bool
	extAll       bool
	extDumpInfo  bool
	extFullPaths bool
	extQuiet     bool
)

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extOutput, "output", "o", "", "Output directory (default: <game_dir>/extracted)")
	extractCmd.Flags().BoolVar(&extNoExtract, "no-extract", false, "Walk and report the tree without writing any file")
	extractCmd.Flags().BoolVar(&extAll, "all", false, "Include entries marked deleted in the FST")
	extractCmd.Flags().BoolVar(&extDumpInfo, "dump-info", false, "Print every visited entry to stderr")
	extractCmd.Flags().BoolVar(&extFullPaths, "full-paths", false, "Print full reconstructed paths instead of names with --dump-info")
	extractCmd.Flags().BoolVarP(&extQuiet, "quiet", "q", false, "Suppress progress output")
}

func runExtract(cmd *cobra.Command, args []string) error {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("title directory not found: %s", dir)
	}

	outRoot := extOutput
	if outRoot == "" {
		outRoot = dir + string(os.PathSeparator) + "extracted"
	}

	reporter := NewReporter(extQuiet || extNoExtract)
	globalReporter = reporter

	var observer fst.EntryObserver
	if extDumpInfo {
		observer = func(n fst.Node) {
			label := n.Name
			if extFullPaths {
				label = n.Path
			}
			kind := "file"
			if n.Entry.IsDirectory() {
				kind = "dir "
			}
			fmt.Fprintf(os.Stderr, "[%s] %s\n", kind, label)
		}
	}

	report, err := title.Extract(title.ExtractOptions{
		OperationContext: title.OperationContext{
			Dir:            dir,
			Reporter:       reporter,
			CheckCancelled: reporter.IsCancelled,
		},
		OutputRoot:   outRoot,
		AllowDeleted: extAll,
		NoExtract:    extNoExtract,
		Observe:      observer,
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

	if extNoExtract {
		return nil
	}

	reporter.PrintSuccess("Extracted %d file(s), %d directory(ies), to %s", len(report.Files), report.DirectoriesCreated, outRoot)
	if !report.Succeeded() {
		return fmt.Errorf("no files were extracted")
	}
	return nil
}
