package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/atmscope/internal/ingest"
	"github.com/spf13/cobra"
)

var (
	loadReset     bool
	loadDelimiter string
)

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load ATM records from a CSV/TSV file into the database",
	Long: `Load ATM records from a delimited file into the atm_data table.

The file needs NAME, ADDRESS, X, Y, WARD and ZIPCODE columns (any case).
Rows are appended unless --reset drops and recreates the table first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt := ingest.Options{}
		switch loadDelimiter {
		case "":
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", loadDelimiter)
		}
		res, err := ingest.ReadFile(path, opt)
		if err != nil {
			return err
		}

		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		ctx := cmd.Context()
		if err := sess.Migrate(ctx, loadReset); err != nil {
			return err
		}
		n, err := sess.Insert(ctx, res.Rows)
		if err != nil {
			return err
		}
		total, err := sess.Count(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		if res.Skipped > len(res.Warnings) {
			fmt.Fprintf(out, "⚠ ... %d more rows skipped\n", res.Skipped-len(res.Warnings))
		}
		log.Info("rows loaded", "file", filepath.Base(path), "read", res.Read, "inserted", n, "skipped", res.Skipped, "encoding", res.Encoding)
		fmt.Fprintf(out, "✓ Loaded %d ATM records from %s (%d in database)\n", n, filepath.Base(path), total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().BoolVar(&loadReset, "reset", false, "drop and recreate the table before loading")
	loadCmd.Flags().StringVar(&loadDelimiter, "delimiter", "", "field delimiter: ',', ';' or 'tab' (default from file extension)")
}
