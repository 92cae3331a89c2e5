package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/atmscope/internal/menu"
	"github.com/spf13/cobra"
)

var exploreOutputDir string

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Pick an ATM name from a menu and map it, repeatedly",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()
		ctx := cmd.Context()
		if notLoaded(cmd, sess) {
			return nil
		}
		names, err := sess.NameCounts(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(names) == 0 {
			fmt.Fprintln(out, "(no ATMs loaded)")
			return nil
		}
		conv, err := newConverter()
		if err != nil {
			return err
		}
		mapper := &nameMapper{sess: sess, conv: conv, out: out, dir: exploreOutputDir}

		sel := menu.New(names, cmd.InOrStdin(), out)
		sel.List()
		fmt.Fprintln(out, "\n"+strings.Repeat("=", 50))
		return sel.Run(ctx, mapper.run)
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().StringVarP(&exploreOutputDir, "output-dir", "o", "", "directory for the HTML maps (default from config)")
}
